package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"deploy":         {"url", "status", "logs <workload>"},
	"undeploy":       {"status", "cluster rm"},
	"build":          {"deploy"},
	"status":         {"logs <workload>", "deploy", "url"},
	"url":            {"status"},
	"list":           {"deploy", "config"},
	"config":         {"list", "deploy"},
	"logs":           {"status"},
	"restart":        {"status", "logs <workload>"},
	"history":        {"deploy", "status"},
	"cluster create": {"deploy", "cluster rm"},
	"cluster rm":     {"cluster create"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "shopctl " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
