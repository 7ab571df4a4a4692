// Package templates holds the outbound message variants, pooled by verdict
// category. The built-in pools can be replaced wholesale from a YAML file.
package templates

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"eoinrun/coach-bot/internal/domain"
)

// namePlaceholder is substituted with the athlete's first name at send time.
const namePlaceholder = "$NAME"

var defaultComplete = []domain.Template{
	{
		Subject: "Well done on the training",
		Body:    "Well done $NAME on the training. How are you finding it all?",
	},
	{
		Subject: "Nice work on Final Surge this week! 💪👏",
		Body:    "You’ve been super consistent, and it shows. Keep it up—every session adds up.\nRest up and get ready for another strong week ahead! 💪👏",
	},
	{
		Subject: "Fantastic job this week in Final Surge!",
		Body:    "Well done on your training in Final Surge this week! Great consistency and effort across the sessions. Keep it going — you're building strong momentum.",
	},
}

var defaultIncomplete = []domain.Template{
	{
		Subject: "Check in",
		Body:    "Hi $NAME, just checking last week wondering how you are finding training?",
	},
}

// Pool is the set of message variants available per verdict category.
type Pool struct {
	complete   []domain.Template
	incomplete []domain.Template
}

// Defaults returns a pool with the built-in variants.
func Defaults() *Pool {
	return &Pool{complete: defaultComplete, incomplete: defaultIncomplete}
}

type fileTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type poolFile struct {
	Complete   []fileTemplate `yaml:"complete"`
	Incomplete []fileTemplate `yaml:"incomplete"`
}

// Load reads a pool override file. A category missing from the file keeps its
// built-in variants; an empty path returns the defaults untouched.
func Load(path string) (*Pool, error) {
	pool := Defaults()
	if path == "" {
		return pool, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}
	var parsed poolFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse templates file: %w", err)
	}
	if len(parsed.Complete) > 0 {
		pool.complete = convert(parsed.Complete)
	}
	if len(parsed.Incomplete) > 0 {
		pool.incomplete = convert(parsed.Incomplete)
	}
	return pool, nil
}

func convert(in []fileTemplate) []domain.Template {
	out := make([]domain.Template, 0, len(in))
	for _, t := range in {
		out = append(out, domain.Template{Subject: t.Subject, Body: t.Body})
	}
	return out
}

// Pick draws one random variant for the category. The broadcast engine calls
// this once per category per pass, so every athlete in the same category gets
// the same variant within one pass.
func (p *Pool) Pick(verdict domain.Verdict) domain.Template {
	var set []domain.Template
	switch verdict {
	case domain.VerdictIncomplete:
		set = p.incomplete
	default:
		set = p.complete
	}
	if len(set) == 0 {
		return domain.Template{}
	}
	return set[rand.Intn(len(set))]
}

// Personalize substitutes the athlete's first name into the template body.
func Personalize(t domain.Template, firstName string) (subject, body string) {
	return t.Subject, strings.ReplaceAll(t.Body, namePlaceholder, firstName)
}
