package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"teamtz/internal/model"
	"teamtz/internal/zone"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Key     string           `json:"key,omitempty"`

	Colleague string `json:"colleague,omitempty"`
	Category  string `json:"category,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

var ErrDoctorIssuesFound = errors.New("doctor: issues found")

// Doctor inspects the raw stored values. Unlike LoadDB it reports what
// loading would silently repair.
func Doctor(ctx context.Context, kv KV) DoctorReport {
	var issues []DoctorIssue
	add := func(level DoctorIssueLevel, code, key, msg string) *DoctorIssue {
		issues = append(issues, DoctorIssue{Level: level, Code: code, Key: key, Message: msg})
		return &issues[len(issues)-1]
	}

	raw := map[string]string{}
	for _, k := range AllKeys {
		v, ok, err := kv.Get(ctx, k)
		switch {
		case err != nil:
			add(DoctorIssueLevelError, "read_failed", k, err.Error())
		case !ok:
			add(DoctorIssueLevelWarn, "key_missing", k, "not stored yet; defaults are used")
		default:
			raw[k] = v
		}
	}

	var cats []model.Category
	if v, ok := raw[KeyCategories]; ok {
		if err := json.Unmarshal([]byte(v), &cats); err != nil {
			add(DoctorIssueLevelError, "invalid_json", KeyCategories, err.Error())
			cats = nil
		}
	}
	known := map[string]bool{}
	for _, c := range cats {
		if known[c.ID] {
			add(DoctorIssueLevelError, "duplicate_category", KeyCategories, fmt.Sprintf("category id %q appears more than once", c.ID)).Category = c.ID
		}
		known[c.ID] = true
	}
	if _, ok := raw[KeyCategories]; ok && cats != nil {
		for _, id := range []string{model.FavoritesID, model.GeneralID} {
			if !known[id] {
				add(DoctorIssueLevelWarn, "builtin_missing", KeyCategories, fmt.Sprintf("built-in category %q is missing and will be restored", id)).Category = id
			}
		}
	}
	known[model.FavoritesID] = true
	known[model.GeneralID] = true

	if v, ok := raw[KeyCategoryOrder]; ok {
		var order []string
		if err := json.Unmarshal([]byte(v), &order); err != nil {
			add(DoctorIssueLevelError, "invalid_json", KeyCategoryOrder, err.Error())
		} else {
			for _, id := range order {
				if !known[id] {
					add(DoctorIssueLevelWarn, "order_unknown_category", KeyCategoryOrder, fmt.Sprintf("order lists unknown category %q", id)).Category = id
				}
			}
		}
	}

	if v, ok := raw[KeyColleagues]; ok {
		cs, err := decodeColleagues(v)
		if err != nil {
			add(DoctorIssueLevelError, "invalid_json", KeyColleagues, err.Error())
		}
		seen := map[string]bool{}
		for _, c := range cs {
			fold := model.FoldName(c.Name)
			switch {
			case strings.TrimSpace(c.Name) == "":
				add(DoctorIssueLevelError, "empty_name", KeyColleagues, "colleague without a name")
			case seen[fold]:
				add(DoctorIssueLevelError, "duplicate_name", KeyColleagues, fmt.Sprintf("%q appears more than once", c.Name)).Colleague = c.Name
			}
			seen[fold] = true
			if err := zone.Validate(c.Timezone); err != nil {
				add(DoctorIssueLevelWarn, "invalid_timezone", KeyColleagues, err.Error()).Colleague = c.Name
			}
			if !known[c.Category] {
				it := add(DoctorIssueLevelWarn, "unknown_category", KeyColleagues, fmt.Sprintf("category %q does not exist; shown under General", c.Category))
				it.Colleague, it.Category = c.Name, c.Category
			}
		}
	}

	if v, ok := raw[KeyHomeTimezone]; ok && strings.TrimSpace(v) != "" {
		if err := zone.Validate(strings.TrimSpace(v)); err != nil {
			add(DoctorIssueLevelWarn, "invalid_timezone", KeyHomeTimezone, err.Error())
		}
	}

	if issues == nil {
		issues = []DoctorIssue{}
	}
	return DoctorReport{Issues: issues}
}
