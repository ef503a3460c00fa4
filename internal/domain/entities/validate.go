package entities

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidQuestion = errors.New("question is empty")
	ErrInvalidProvider = errors.New("unknown llm provider")
	ErrInvalidPlatform = errors.New("unknown chat platform")
	ErrInvalidSource   = errors.New("invalid pdf source")
	ErrInvalidRecord   = errors.New("invalid database record")
)

// ParseLLMProvider maps a case-insensitive name onto a known provider.
func ParseLLMProvider(s string) (LLMProvider, error) {
	p := LLMProvider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProvider, s)
}

// ParseChatPlatform maps a case-insensitive name onto a known platform.
func ParseChatPlatform(s string) (ChatPlatform, error) {
	p := ChatPlatform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
}

// Validate checks the request before it is sent.
func (r HybridQueryRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrInvalidQuestion
	}
	if r.LLMProvider != "" {
		if _, err := ParseLLMProvider(string(r.LLMProvider)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a cited source: the file name is required, a page is
// 1-based and the score must be a finite number.
func (s PdfSourceInfo) Validate() error {
	if strings.TrimSpace(s.FileName) == "" {
		return fmt.Errorf("%w: missing file_name", ErrInvalidSource)
	}
	if s.Page < 0 {
		return fmt.Errorf("%w: page %d for %s", ErrInvalidSource, s.Page, s.FileName)
	}
	if math.IsNaN(s.RelevanceScore) || math.IsInf(s.RelevanceScore, 0) {
		return fmt.Errorf("%w: relevance score for %s", ErrInvalidSource, s.FileName)
	}
	return nil
}

// Sanitize drops invalid detailed sources and records the number of
// quarantined sources and rows. It returns the receiver for chaining.
func (r *HybridResponse) Sanitize() *HybridResponse {
	if r == nil {
		return nil
	}
	valid := r.PDFSourcesDetailed[:0]
	for _, src := range r.PDFSourcesDetailed {
		if err := src.Validate(); err != nil {
			r.Quarantined++
			continue
		}
		valid = append(valid, src)
	}
	r.PDFSourcesDetailed = valid

	for name, res := range r.DBResults {
		r.Quarantined += res.Quarantined
		if res.Table == "" {
			res.Table = name
			r.DBResults[name] = res
		}
	}
	return r
}
