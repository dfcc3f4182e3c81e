// Package prompt asks the questions of interactive commands on a terminal.
package prompt

import (
	"context"
	"errors"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a question with Ctrl+C.
var ErrAborted = errors.New("prompt: aborted")

// InputConfig describes a free text question.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no question.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a pick-one or pick-many question. Answers are
// indices into Options.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int // MultiSelect only
	Help         string
	PageSize     int
}

// Driver asks questions. Commands take a Driver so tests can script the
// answers.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
}

type surveyDriver struct{}

// Survey returns a Driver that asks on the process terminal.
func Survey() Driver {
	return surveyDriver{}
}

// ask runs one survey question unless ctx is already done.
func ask(ctx context.Context, p survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(p, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if validate := cfg.Validator; validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	var answer string
	err := ask(ctx, &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &answer, opts...)
	return answer, err
}

func (surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &answer)
	return answer, err
}

func (surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	p := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if picked := defaultsFromIndices(cfg.Options, []int{cfg.DefaultIndex}); len(picked) == 1 {
		p.Default = picked[0]
	}
	var answer string
	if err := ask(ctx, p, &answer); err != nil {
		return 0, err
	}
	return indexOf(cfg.Options, answer), nil
}

func (surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	p := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if picked := defaultsFromIndices(cfg.Options, cfg.Defaults); len(picked) > 0 {
		p.Default = picked
	}
	var answers []string
	if err := ask(ctx, p, &answers); err != nil {
		return nil, err
	}
	return indicesOf(cfg.Options, answers), nil
}

// indexOf returns the position of value in options, or -1.
func indexOf(options []string, value string) int {
	return slices.Index(options, value)
}

// indicesOf maps picked values back to their positions, in option order.
func indicesOf(options, values []string) []int {
	var out []int
	for i, option := range options {
		if slices.Contains(values, option) {
			out = append(out, i)
		}
	}
	return out
}

// defaultsFromIndices returns the options at the valid indices.
func defaultsFromIndices(options []string, indices []int) []string {
	var out []string
	for _, i := range indices {
		if i >= 0 && i < len(options) {
			out = append(out, options[i])
		}
	}
	return out
}
