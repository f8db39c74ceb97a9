package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/juniortour/engine"
)

// maxBodyBytes leaves room for a full-size signature image.
const maxBodyBytes = 1 << 20

// bindStrict decodes a JSON body and rejects unknown fields, trailing data
// and oversize payloads.
func bindStrict(c echo.Context, dst any) error {
	body := io.LimitReader(c.Request().Body, maxBodyBytes+1)
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", engine.ErrValidation, err)
	}
	if len(raw) > maxBodyBytes {
		return fmt.Errorf("%w: request body too large", engine.ErrValidation)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", engine.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: invalid request body: trailing data", engine.ErrValidation)
	}
	return nil
}

func queryUUID(c echo.Context, name string) (uuid.UUID, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return uuid.Nil, fmt.Errorf("%w: %s required", engine.ErrValidation, name)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", engine.ErrValidation, name)
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", engine.ErrValidation, name)
	}
	return n, nil
}

// roundQuery reads tournamentId and round, round defaulting to 1.
func roundQuery(c echo.Context) (uuid.UUID, int, error) {
	tid, err := queryUUID(c, "tournamentId")
	if err != nil {
		return uuid.Nil, 0, err
	}
	round, err := queryInt(c, "round", 1)
	if err != nil {
		return uuid.Nil, 0, err
	}
	return tid, round, nil
}
