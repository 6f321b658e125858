package xkcd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errMissing = errors.New("missing")

// decodeComic maps an info.0.json body onto a Comic. Required fields are
// checked in wire order so the first offending one is reported.
func decodeComic(site, body string) (Comic, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Comic{}, &DecodeError{Err: err}
	}
	if fields == nil {
		return Comic{}, &DecodeError{Err: errors.New("body is not a JSON object")}
	}

	title, err := stringField(fields, "title")
	if err != nil {
		return Comic{}, err
	}
	if strings.TrimSpace(title) == "" {
		return Comic{}, &DecodeError{Field: "title", Err: errors.New("empty")}
	}

	num, err := intField(fields, "num")
	if err != nil {
		return Comic{}, err
	}
	if num <= 0 {
		return Comic{}, &DecodeError{Field: "num", Err: fmt.Errorf("not positive: %d", num)}
	}

	img, err := stringField(fields, "img")
	if err != nil {
		return Comic{}, err
	}

	alt, err := stringField(fields, "alt")
	if err != nil {
		return Comic{}, err
	}

	date, err := dateFields(fields)
	if err != nil {
		return Comic{}, err
	}

	return Comic{
		site:      normalizeSite(site),
		title:     title,
		imageURL:  img,
		altText:   alt,
		number:    num,
		published: date,
	}, nil
}

func rawField(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, &DecodeError{Field: name, Err: errMissing}
	}
	return raw, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := rawField(fields, name)
	if err != nil {
		return "", err
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &DecodeError{Field: name, Err: err}
	}
	return s, nil
}

// intField accepts a JSON integer or a decimal string; upstream sends num as
// an integer and the date parts as strings.
func intField(fields map[string]json.RawMessage, name string) (int, error) {
	raw, err := rawField(fields, name)
	if err != nil {
		return 0, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &DecodeError{Field: name, Err: err}
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, &DecodeError{Field: name, Err: err}
		}
		return n, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, &DecodeError{Field: name, Err: err}
	}
	return n, nil
}

func dateFields(fields map[string]json.RawMessage) (Date, error) {
	year, err := intField(fields, "year")
	if err != nil {
		return Date{}, err
	}
	month, err := intField(fields, "month")
	if err != nil {
		return Date{}, err
	}
	day, err := intField(fields, "day")
	if err != nil {
		return Date{}, err
	}

	if month < 1 || month > 12 {
		return Date{}, &DecodeError{Field: "month", Err: fmt.Errorf("out of range: %d", month)}
	}

	// time.Date normalizes overflow, so a round trip catches days like 02-30.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return Date{}, &DecodeError{Field: "day", Err: fmt.Errorf("out of range: %d", day)}
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}
