package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type tomlDocument struct {
	Formatting *tomlFormatting `toml:"formatting"`
	Handlers   []tomlHandler   `toml:"handlers"`
	Elements   []tomlEntry     `toml:"elements"`
}

type tomlFormatting struct {
	Tabs *struct {
		Style        *string `toml:"style"`
		SpacesPerTab *int    `toml:"spaces-per-tab"`
	} `toml:"tabs"`
	Regions *struct {
		Style         *string `toml:"style"`
		EndRegionName *bool   `toml:"end-region-name"`
	} `toml:"regions"`
	ClosingComments *struct {
		Enabled *bool   `toml:"enabled"`
		Format  *string `toml:"format"`
	} `toml:"closing-comments"`
	LineSpacing *struct {
		RemoveConsecutiveBlankLines *bool `toml:"remove-consecutive-blank-lines"`
	} `toml:"line-spacing"`
	Usings *struct {
		MoveTo *string `toml:"move-to"`
	} `toml:"usings"`
}

type tomlHandler struct {
	Language   string `toml:"language"`
	Extensions []struct {
		Name   string `toml:"name"`
		Filter string `toml:"filter"`
	} `toml:"extensions"`
}

// tomlEntry is one of element, region or ref, whichever is set.
type tomlEntry struct {
	Element    *string      `toml:"element"`
	Region     *string      `toml:"region"`
	Ref        *string      `toml:"ref"`
	ID         string       `toml:"id"`
	Filter     string       `toml:"filter"`
	Directives *bool        `toml:"directives"`
	SortBy     *tomlSortBy  `toml:"sort-by"`
	GroupBy    *tomlGroupBy `toml:"group-by"`
	Elements   []tomlEntry  `toml:"elements"`
}

type tomlSortBy struct {
	By        string      `toml:"by"`
	Direction string      `toml:"direction"`
	Then      *tomlSortBy `toml:"then"`
}

type tomlGroupBy struct {
	By              string       `toml:"by"`
	Capture         string       `toml:"capture"`
	Direction       string       `toml:"direction"`
	Separator       string       `toml:"separator"`
	CustomSeparator string       `toml:"custom-separator"`
	Then            *tomlGroupBy `toml:"then"`
}

// ParseTOML reads the TOML form of a configuration:
//
//	[formatting.tabs]
//	style = "spaces"
//
//	[[elements]]
//	element = "field"
//	sort-by = { by = "access", direction = "descending", then = { by = "name" } }
//
//	[[elements]]
//	region = "Methods"
//	elements = [{ element = "method" }]
//
// The result is not validated.
func ParseTOML(src []byte) (*Configuration, error) {
	var doc tomlDocument
	if err := toml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := &Configuration{Formatting: DefaultFormatting(), Handlers: DefaultHandlers()}
	if doc.Formatting != nil {
		if err := tomlFormattingInto(&cfg.Formatting, doc.Formatting); err != nil {
			return nil, err
		}
	}
	if doc.Handlers != nil {
		cfg.Handlers = nil
		for _, th := range doc.Handlers {
			h := Handler{Language: th.Language}
			for _, ext := range th.Extensions {
				h.Extensions = append(h.Extensions, Extension{Name: strings.TrimPrefix(ext.Name, "."), FilterBy: ext.Filter})
			}
			cfg.Handlers = append(cfg.Handlers, h)
		}
	}
	entries, err := tomlEntries(doc.Elements)
	if err != nil {
		return nil, err
	}
	cfg.Elements = entries
	return cfg, nil
}

func tomlFormattingInto(f *Formatting, tf *tomlFormatting) error {
	var err error
	if t := tf.Tabs; t != nil {
		if t.Style != nil {
			if f.Tabs.Style, err = ParseTabStyle(*t.Style); err != nil {
				return err
			}
		}
		if t.SpacesPerTab != nil {
			f.Tabs.SpacesPerTab = *t.SpacesPerTab
		}
	}
	if r := tf.Regions; r != nil {
		if r.Style != nil {
			if f.Regions.Style, err = ParseRegionStyle(*r.Style); err != nil {
				return err
			}
		}
		if r.EndRegionName != nil {
			f.Regions.EndRegionNameEnabled = *r.EndRegionName
		}
	}
	if c := tf.ClosingComments; c != nil {
		if c.Enabled != nil {
			f.ClosingComments.Enabled = *c.Enabled
		}
		if c.Format != nil {
			f.ClosingComments.Format = *c.Format
		}
	}
	if l := tf.LineSpacing; l != nil && l.RemoveConsecutiveBlankLines != nil {
		f.LineSpacing.RemoveConsecutiveBlankLines = *l.RemoveConsecutiveBlankLines
	}
	if u := tf.Usings; u != nil && u.MoveTo != nil {
		if f.Usings.MoveTo, err = ParseUsingMove(*u.MoveTo); err != nil {
			return err
		}
	}
	return nil
}

func tomlEntries(raw []tomlEntry) ([]Entry, error) {
	var entries []Entry
	for _, te := range raw {
		children, err := tomlEntries(te.Elements)
		if err != nil {
			return nil, err
		}
		switch {
		case te.Element != nil:
			kind, err := parseKind(*te.Element)
			if err != nil {
				return nil, err
			}
			e := &ElementConfiguration{ID: te.ID, ElementType: kind, FilterBy: te.Filter, Elements: children}
			if e.SortBy, err = tomlSort(te.SortBy); err != nil {
				return nil, err
			}
			if e.GroupBy, err = tomlGroup(te.GroupBy); err != nil {
				return nil, err
			}
			entries = append(entries, e)
		case te.Region != nil:
			r := &RegionConfiguration{Name: *te.Region, DirectivesEnabled: true, Elements: children}
			if te.Directives != nil {
				r.DirectivesEnabled = *te.Directives
			}
			entries = append(entries, r)
		case te.Ref != nil:
			entries = append(entries, &ElementReference{ID: *te.Ref})
		default:
			return nil, fmt.Errorf("configuration entry needs one of element, region or ref")
		}
	}
	return entries, nil
}

func tomlSort(ts *tomlSortBy) (*SortBy, error) {
	if ts == nil {
		return nil, nil
	}
	s := &SortBy{Direction: Ascending}
	var err error
	if s.By, err = parseAttribute(ts.By); err != nil {
		return nil, err
	}
	if ts.Direction != "" {
		if s.Direction, err = ParseSortDirection(ts.Direction); err != nil {
			return nil, err
		}
	}
	if s.InnerSortBy, err = tomlSort(ts.Then); err != nil {
		return nil, err
	}
	return s, nil
}

func tomlGroup(tg *tomlGroupBy) (*GroupBy, error) {
	if tg == nil {
		return nil, nil
	}
	g := &GroupBy{Direction: Ascending, AttributeCapture: tg.Capture, CustomSeparator: tg.CustomSeparator}
	var err error
	if g.By, err = parseAttribute(tg.By); err != nil {
		return nil, err
	}
	if tg.Direction != "" {
		if g.Direction, err = ParseSortDirection(tg.Direction); err != nil {
			return nil, err
		}
	}
	switch {
	case tg.Separator != "":
		if g.SeparatorType, err = ParseSeparatorType(tg.Separator); err != nil {
			return nil, err
		}
	case tg.CustomSeparator != "":
		g.SeparatorType = SeparatorCustom
	}
	if g.InnerGroupBy, err = tomlGroup(tg.Then); err != nil {
		return nil, err
	}
	return g, nil
}
