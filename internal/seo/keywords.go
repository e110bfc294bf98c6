package seo

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/pipeline-score/internal/model"
)

// Baseline phrases are evaluated for every business regardless of the
// services selected. %s is the city.
var baselineTemplates = []string{
	// contractor intent
	"%s garage floor contractors",
	"concrete coating contractors %s",
	"epoxy flooring installers %s",
	// problem based
	"cracked garage floor repair %s",
	"garage floor peeling %s",
	"concrete floor sealing %s",
	// commercial
	"warehouse floor coating %s",
	"industrial epoxy flooring %s",
	// research
	"garage floor coating cost %s",
	"epoxy vs polyurea flooring %s",
}

// serviceTemplates maps a questionnaire service to its highest-value phrases.
var serviceTemplates = map[string][]string{
	"Polyurea": {
		"polyurea coating %s",
		"polyurea flooring %s",
		"polyurea garage floor %s",
	},
	"Polyaspartic": {
		"polyaspartic coating %s",
		"polyaspartic flooring %s",
		"polyaspartic garage floor %s",
	},
	"Decorative Concrete": {
		"decorative concrete %s",
		"stamped concrete %s",
		"decorative concrete flooring %s",
	},
	"Epoxy": {
		"epoxy flooring %s",
		"epoxy garage floor %s",
		"epoxy coating %s",
	},
}

// foldCase folds s for case-insensitive comparison. Casers are stateful, so
// each call gets its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// CleanCity drops any state suffix ("Milwaukee, WI" -> "Milwaukee").
func CleanCity(city string) string {
	city, _, _ = strings.Cut(city, ",")
	return strings.TrimSpace(city)
}

// Keywords builds the keyword set for the selected services and city: the
// baseline phrases followed by the phrases of each known service, without
// duplicates. Unknown services contribute nothing.
func Keywords(services []string, city string) []string {
	c := CleanCity(city)
	seen := make(map[string]bool)
	var out []string
	add := func(tmpl string) {
		kw := fmt.Sprintf(tmpl, c)
		key := foldCase(kw)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, kw)
	}

	for _, tmpl := range baselineTemplates {
		add(tmpl)
	}
	for _, svc := range services {
		for name, tmpls := range serviceTemplates {
			if foldCase(name) != foldCase(strings.TrimSpace(svc)) {
				continue
			}
			for _, tmpl := range tmpls {
				add(tmpl)
			}
		}
	}
	return out
}

// IsServiceKeyword reports whether a keyword is tied to a selected service,
// i.e. it is not one of the baseline phrases for any city.
func IsServiceKeyword(keyword string) bool {
	kw := foldCase(strings.TrimSpace(keyword))
	for _, tmpl := range baselineTemplates {
		prefix, suffix, _ := strings.Cut(tmpl, "%s")
		if len(kw) > len(prefix)+len(suffix) &&
			strings.HasPrefix(kw, prefix) && strings.HasSuffix(kw, suffix) {
			return false
		}
	}
	return true
}

// Priority ranks a keyword for follow-up from its volume and whether it
// names one of the selected services.
func Priority(keyword string, services []string, volume int) model.KeywordPriority {
	kw := foldCase(keyword)
	forService := false
	for _, svc := range services {
		if s := foldCase(strings.TrimSpace(svc)); s != "" && strings.Contains(kw, s) {
			forService = true
			break
		}
	}

	switch {
	case forService && volume >= 300:
		return model.PriorityHigh
	case volume >= 500:
		return model.PriorityHigh
	case volume >= 200:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
