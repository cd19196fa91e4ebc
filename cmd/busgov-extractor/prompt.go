package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/ohappykust/busgov-extractor/internal/errors"
	"github.com/ohappykust/busgov-extractor/internal/filters"
)

const (
	urlPrompt     = "Введите ссылку на страницу с данными: "
	confirmPrompt = "Начать выгрузку данных? (Д/н): "

	maxLinkLength = 1 << 20
)

// prompter collects the search link from the operator
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLinkLength)
	return &prompter{in: scanner, out: out}
}

func (p *prompter) ask(question string) (string, bool) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// Filter returns the first link the operator confirms. A link passed on the
// command line is used instead of the first prompt; when it is invalid or
// declined the operator is asked again. assumeYes skips the confirmation
// question.
func (p *prompter) Filter(link string, assumeYes bool) (filters.Filter, error) {
	for {
		raw := link
		link = ""
		if raw == "" {
			var ok bool
			if raw, ok = p.ask(urlPrompt); !ok {
				return filters.Filter{}, apperrors.NewValidationError("no search link received")
			}
		}

		f, err := filters.ParseURL(raw)
		if err != nil {
			fmt.Fprintln(p.out, filters.InvalidURLMessage)
			continue
		}

		fmt.Fprint(p.out, f.Summary())
		if assumeYes {
			return f, nil
		}

		answer, ok := p.ask(confirmPrompt)
		if !ok {
			return filters.Filter{}, apperrors.NewValidationError("export was not confirmed")
		}
		if confirmed(answer) {
			return f, nil
		}
	}
}

// confirmed accepts an empty answer, "д" or "y" in any case
func confirmed(answer string) bool {
	switch strings.ToLower(answer) {
	case "", "д", "y":
		return true
	}
	return false
}
