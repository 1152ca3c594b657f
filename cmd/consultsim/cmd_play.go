package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pharmacy-consult-sim/internal/simulation"
)

type playFlags struct {
	actions       []string
	anticoagulant bool
	procedure     bool
	noRepeat      bool
	output        string
}

func newPlayCmd() *cobra.Command {
	var flags playFlags
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Apply a scripted list of actions and print each step",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, flags)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&flags.actions, "actions", nil, "Comma separated action ids (required)")
	f.BoolVar(&flags.anticoagulant, "anticoagulant", true, "Patient secretly takes an anticoagulant")
	f.BoolVar(&flags.procedure, "procedure", true, "Patient secretly has a procedure scheduled")
	f.BoolVar(&flags.noRepeat, "no-repeat", false, "Disallow repeat questions")
	f.StringVarP(&flags.output, "output", "o", "text", "Final view format: text, json or yaml")
	_ = cmd.MarkFlagRequired("actions")
	return cmd
}

func runPlay(cmd *cobra.Command, flags playFlags) error {
	engine, err := simulation.NewDefaultEngine(simulation.WithRepeatQuestions(!flags.noRepeat))
	if err != nil {
		return err
	}
	hidden := simulation.HiddenConditions{Anticoagulant: flags.anticoagulant, Procedure: flags.procedure}
	s := engine.StartSession(simulation.SessionConfig{ForcedHidden: &hidden})

	out := cmd.OutOrStdout()
	for i, raw := range flags.actions {
		action := simulation.ActionID(strings.TrimSpace(raw))
		next, err := engine.Apply(s, action, "")
		if err != nil {
			return fmt.Errorf("step %d: %w (eligible: %s)", i+1, err, joinActions(engine.EligibleActions(s)))
		}
		s = next
		if flags.output == "text" {
			fmt.Fprintf(out, "%2d. %-28s -> %-20s score %4d", i+1, action, s.Phase, s.Score)
			if s.LastDisclosure != "" {
				fmt.Fprintf(out, "  %q", s.LastDisclosure)
			}
			fmt.Fprintln(out)
		}
	}

	v := engine.View(s)
	if flags.output != "text" {
		return writeStructured(out, flags.output, v)
	}
	if v.Outcome != nil {
		fmt.Fprintf(out, "Outcome: %s (%s, %+d)\n", v.Outcome.Rule, v.Outcome.Severity, v.Outcome.Delta)
		fmt.Fprintf(out, "  %s\n", v.Outcome.Message)
	}
	fmt.Fprintf(out, "Final:   %s, score %d", v.Phase, v.Score)
	if v.Terminated {
		fmt.Fprintf(out, ", grade %s", v.Grade)
	}
	fmt.Fprintln(out)
	return nil
}

func joinActions(actions []simulation.ActionID) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
