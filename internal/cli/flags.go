package cli

import "irverify/internal/config"

// Flags holds command-line flags
type Flags struct {
	Processors int
	SuitePath  string
	SuiteFile  string
	NameFilter string
	NoBuiltin  bool
	Arch       string
	Seed       uint64
	Recapture  bool
	StrictArch bool
	ShowRules  bool
	OpenFaills bool
	Print      bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors: f.Processors,
		SuitePath:  f.SuitePath,
		SuiteFile:  f.SuiteFile,
		NameFilter: f.NameFilter,
		NoBuiltin:  f.NoBuiltin,
		Arch:       f.Arch,
		Seed:       f.Seed,
		Recapture:  f.Recapture,
		StrictArch: f.StrictArch,
		ShowRules:  f.ShowRules,
		OpenFaills: f.OpenFaills,
	}
}
