// Package prompt builds the text sent to the generation service.
package prompt

import "strings"

// Exchange is one earlier turn of the conversation.
type Exchange struct {
	Child string
	Hawy  string
}

// Input is everything a prompt is built from.
type Input struct {
	Knowledge     string
	LanguageRules string
	Persona       string
	// Transcript holds earlier turns, oldest first.
	Transcript []Exchange
	Message    string
}

// Compose renders in as a single prompt. Sections appear in a fixed order
// (knowledge, language rules, persona, transcript, question) separated by a
// blank line; empty sections are left out. Compose is pure: equal inputs give
// byte-identical output.
func Compose(in Input) string {
	var sections []string
	for _, s := range []string{in.Knowledge, in.LanguageRules, in.Persona} {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}

	if len(in.Transcript) > 0 {
		sections = append(sections, transcript(in.Transcript))
	}

	sections = append(sections, "Child's question: "+in.Message+"\n\nHawy's response:")

	return strings.Join(sections, "\n\n")
}

func transcript(turns []Exchange) string {
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Child: ")
		b.WriteString(t.Child)
		b.WriteString("\nHawy: ")
		b.WriteString(t.Hawy)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
