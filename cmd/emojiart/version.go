package main

import "flag"

type versionCmd struct{ *root }

func (v *versionCmd) FlagSet() *flag.FlagSet { return nil }

func (v *versionCmd) Run() error {
	v.printf("%s version %s", v.program, version)
	if commit != "" {
		v.printf(" (%s", commit)
		if date != "" {
			v.printf(", %s", date)
		}
		v.printf(")")
	}
	v.printf("\n")
	return nil
}
