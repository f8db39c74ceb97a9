package render

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/scoring"
)

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return err
		}
	}
	return nil
}

func boldHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, 1), cell(cols, 1), style)
}

func workbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func finish(f *excelize.File) ([]byte, error) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Startlist writes the round's flights, one row per seat. Tee times are
// shown in loc.
func Startlist(t *models.Tournament, round int, fl []models.Flight, loc *time.Location) ([]byte, error) {
	sheet := fmt.Sprintf("Round %d", round)
	f, err := workbook(sheet)
	if err != nil {
		return nil, err
	}

	header := []any{"Flight", "Start", "Seat", "Name", "Club", "Nation", "Hcp", "Holes", "Gender", "Marked by"}
	if err := writeRow(f, sheet, 1, header...); err != nil {
		_ = f.Close()
		return nil, err
	}
	row := 2
	for _, fl := range fl {
		names := make(map[uuid.UUID]string, len(fl.Players))
		for _, p := range fl.Players {
			if p.Registration != nil {
				names[p.RegistrationID] = p.Registration.FullName()
			}
		}
		start := ""
		if fl.StartTime != nil {
			start = fl.StartTime.In(loc).Format("15:04")
		}
		for _, p := range fl.Players {
			var club, nation string
			var hcp any = ""
			if p.Registration != nil {
				club, nation = p.Registration.HomeClub, p.Registration.Nation
				if p.Registration.Hcp != nil {
					hcp = *p.Registration.Hcp
				}
			}
			if err := writeRow(f, sheet, row,
				fl.FlightNumber, start, p.Seat, names[p.RegistrationID], club, nation, hcp,
				fl.Holes, string(fl.Gender), names[p.MarkerRegistrationID],
			); err != nil {
				_ = f.Close()
				return nil, err
			}
			row++
		}
	}
	if err := boldHeader(f, sheet, len(header)); err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.SetColWidth(sheet, "D", "D", 28)
	_ = f.SetColWidth(sheet, "E", "E", 24)
	_ = f.SetColWidth(sheet, "J", "J", 28)
	if t != nil {
		_ = f.SetDocProps(&excelize.DocProperties{Title: fmt.Sprintf("%s startlist round %d", t.Name, round)})
	}
	return finish(f)
}

// Scorecards writes one row per finalized card with per-hole confirmed
// strokes, a par row first.
func Scorecards(round int, pars map[int]int, cards []Scorecard) ([]byte, error) {
	sheet := fmt.Sprintf("Round %d", round)
	f, err := workbook(sheet)
	if err != nil {
		return nil, err
	}

	header := []any{"Name", "Club", "Holes", "Age group"}
	for h := 1; h <= scoring.MaxHole; h++ {
		header = append(header, fmt.Sprintf("H%d", h))
	}
	header = append(header, "Total", "To par", "Thru", "Marker", "Signed by", "Finalized")
	if err := writeRow(f, sheet, 1, header...); err != nil {
		_ = f.Close()
		return nil, err
	}

	parRow := []any{"Par", "", "", ""}
	for h := 1; h <= scoring.MaxHole; h++ {
		if p, ok := pars[h]; ok {
			parRow = append(parRow, p)
		} else {
			parRow = append(parRow, "")
		}
	}
	if err := writeRow(f, sheet, 2, parRow...); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, c := range cards {
		vals := []any{c.FirstName + " " + c.LastName, c.HomeClub, c.Holes, c.AgeGroup}
		byHole := make(map[int]scoring.HoleStatus, len(c.Card.Holes))
		for _, h := range c.Card.Holes {
			byHole[h.Hole] = h
		}
		for h := 1; h <= scoring.MaxHole; h++ {
			st, ok := byHole[h]
			if ok && st.Confirmed {
				vals = append(vals, *st.Self)
			} else {
				vals = append(vals, "")
			}
		}
		vals = append(vals, intOrBlank(c.Card.Score), intOrBlank(c.Card.ToPar), c.Card.Thru, c.MarkerName, signers(c.Signatures))
		if c.FinalizedAt != nil {
			vals = append(vals, c.FinalizedAt.UTC().Format(time.RFC3339))
		} else {
			vals = append(vals, "")
		}
		if err := writeRow(f, sheet, i+3, vals...); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if err := boldHeader(f, sheet, len(header)); err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.SetColWidth(sheet, "A", "B", 26)
	return finish(f)
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func signers(sigs []Signature) string {
	out := ""
	for i, s := range sigs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%s)", s.Name, s.Role)
	}
	return out
}
