package main

import (
	"context"

	"github.com/meigma/oaktms/locres"
)

func runLocres(_ context.Context, args []string, e *env) error {
	fs := newFlagSet("locres", e)
	if err := fs.Parse(args); err != nil {
		return err
	}
	file, err := oneArg(fs, "locres file")
	if err != nil {
		return err
	}
	t, err := locres.Open(file)
	if err != nil {
		return err
	}
	return t.Render(e.stdout)
}
