package spec

import (
	"regexp"
	"strings"
)

// FilterOption configures which operations Filter keeps.
type FilterOption func(*filterConfig)

type filterConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.includeTags == nil {
				c.includeTags = make(map[string]struct{}, len(tags))
			}
			c.includeTags[t] = struct{}{}
		}
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if c.excludeTags == nil {
				c.excludeTags = make(map[string]struct{}, len(tags))
			}
			c.excludeTags[t] = struct{}{}
		}
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) FilterOption {
	return func(c *filterConfig) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[HttpMethod(strings.ToLower(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only paths matching at least one of the provided
// regular expressions. An invalid pattern matches nothing.
func WithPathPatterns(patterns []string) FilterOption {
	return func(c *filterConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Filter returns a copy of doc keeping only the operations allowed by opts.
// Definitions are always kept. Paths left without operations are dropped.
// With no options the document is returned unchanged.
func Filter(doc *Document, opts ...FilterOption) *Document {
	cfg := &filterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if doc == nil || cfg.empty() {
		return doc
	}

	out := &Document{
		Host:        doc.Host,
		BasePath:    doc.BasePath,
		Schemes:     doc.Schemes,
		Definitions: doc.Definitions,
		Paths:       make(map[string]*PathItem, len(doc.Paths)),
	}
	for path, item := range doc.Paths {
		if !cfg.allowPath(path) {
			continue
		}
		kept := &PathItem{}
		keep := false
		for _, m := range Methods {
			op := item.Operation(m)
			if op == nil || !cfg.allowMethod(m) || !cfg.allowTags(op.Tags) {
				continue
			}
			kept.SetOperation(m, op)
			keep = true
		}
		if keep {
			out.Paths[path] = kept
		}
	}
	return out
}

func (c *filterConfig) empty() bool {
	return len(c.includeTags) == 0 && len(c.excludeTags) == 0 && len(c.methods) == 0 && len(c.pathRes) == 0
}

func (c *filterConfig) allowPath(path string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (c *filterConfig) allowMethod(m HttpMethod) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *filterConfig) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}
