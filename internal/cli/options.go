// Package cli is qterm's command-line entrypoint (§6): a
// github.com/jessevdk/go-flags parser tree mirroring the teacher's
// cmd/agently option.go/cli.go split — a root Options struct whose
// sub-command pointer fields are lazily instantiated from the first
// argument so the parser never errors on a nil sub-command.
package cli

// Options is the root command set. Struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Chat      *ChatCmd      `command:"chat" description:"Start or continue an interactive chat"`
	Settings  *SettingsCmd  `command:"settings" description:"Get or set a persisted setting"`
	Inline    *InlineCmd    `command:"inline" description:"Manage shell inline-suggestion mode"`
	Update    *UpdateCmd    `command:"update" description:"Check for and install a qterm update"`
	Uninstall *UninstallCmd `command:"uninstall" description:"Remove qterm's shell integration and state"`
	Doctor    *DoctorCmd    `command:"doctor" description:"Diagnose the local qterm installation"`
	Hook      *HookCmd      `command:"hook" description:"Forward a shell-wrapper hook event (internal use)"`
}

// Init instantiates the sub-command named by firstArg so flags.Parse can
// populate its fields, mirroring the teacher's Options.Init.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "chat":
		o.Chat = &ChatCmd{}
	case "settings":
		o.Settings = &SettingsCmd{}
	case "inline":
		o.Inline = &InlineCmd{}
	case "update":
		o.Update = &UpdateCmd{}
	case "uninstall":
		o.Uninstall = &UninstallCmd{}
	case "doctor":
		o.Doctor = &DoctorCmd{}
	case "hook":
		o.Hook = &HookCmd{}
	}
}
