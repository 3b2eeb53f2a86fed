package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Arch is a canonical target architecture.
type Arch string

const (
	ArchX86_64 Arch = "x86-64"
	ArchX86    Arch = "x86"
	ArchARM64  Arch = "arm64"
)

// archAliases converts all the myriad architecture names to the canonical one.
var archAliases = map[string]Arch{
	"x86-64": ArchX86_64,
	"x86_64": ArchX86_64,
	"x64":    ArchX86_64,
	"amd64":  ArchX86_64,

	"i386": ArchX86,
	"i486": ArchX86,
	"i586": ArchX86,
	"i686": ArchX86,
	"x86":  ArchX86,
	"386":  ArchX86,

	"aarch64": ArchARM64,
	"arm64":   ArchARM64,
}

var archBits = map[Arch]int{
	ArchX86_64: 64,
	ArchX86:    32,
	ArchARM64:  64,
}

// NormalizeArch returns the canonical architecture for any known alias.
func NormalizeArch(name string) (Arch, error) {
	a, ok := archAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("invalid or unknown architecture %q: %w", name, ErrNotValid)
	}
	return a, nil
}

// NormalizeArches normalizes and deduplicates a list of architectures, the
// result is sorted.
func NormalizeArches(names []string) ([]Arch, error) {
	set := map[Arch]struct{}{}
	for _, n := range names {
		a, err := NormalizeArch(n)
		if err != nil {
			return nil, err
		}
		set[a] = struct{}{}
	}

	arches := make([]Arch, 0, len(set))
	for a := range set {
		arches = append(arches, a)
	}
	sort.Slice(arches, func(i, j int) bool { return arches[i] < arches[j] })

	return arches, nil
}

// Bits returns the word size of the architecture.
func (a Arch) Bits() int { return archBits[a] }

// Workload is a data described comparison: the same arguments and input run
// against a reference and a candidate executable.
type Workload struct {
	Name string
	// Reference and Candidate are executable paths, they may contain the
	// `{arch}` and `{bits}` placeholders.
	Reference string
	Candidate string
	// Args may also contain placeholders.
	Args    []string
	Input   []byte
	Timeout time.Duration
	Mode    OutputMode
}

// Validate checks the workload is complete.
func (w Workload) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workload name is required: %w", ErrNotValid)
	}
	if w.Reference == "" {
		return fmt.Errorf("workload %s reference is required: %w", w.Name, ErrNotValid)
	}
	if w.Candidate == "" {
		return fmt.Errorf("workload %s candidate is required: %w", w.Name, ErrNotValid)
	}
	if w.Timeout < 0 {
		return fmt.Errorf("workload %s timeout can't be negative: %w", w.Name, ErrNotValid)
	}
	if w.Mode != "" {
		if err := w.Mode.Validate(); err != nil {
			return fmt.Errorf("workload %s: %w", w.Name, err)
		}
	}
	return nil
}

// Commands expands the workload for an architecture into the reference and
// candidate command specs. In self test mode the candidate is the reference.
func (w Workload) Commands(arch Arch, selfTest bool) (ref, cand CommandSpec) {
	r := strings.NewReplacer("{arch}", string(arch), "{bits}", strconv.Itoa(arch.Bits()))

	args := make([]string, 0, len(w.Args))
	for _, a := range w.Args {
		args = append(args, r.Replace(a))
	}

	ref = CommandSpec{Path: r.Replace(w.Reference), Args: args, Input: w.Input}
	cand = ref.WithInput(w.Input)
	if !selfTest {
		cand.Path = r.Replace(w.Candidate)
	}

	return ref, cand
}

// Catalog is a set of workloads plus the explicit environment they run in.
type Catalog struct {
	// Arches are the architectures every workload is expanded for.
	Arches []Arch
	// Env are extra environment variables for every run (e.g library paths).
	Env map[string]string
	// Timeout is the default timeout of workloads that don't set one.
	Timeout time.Duration
	// Digest is the checksum algorithm used for all the workloads.
	Digest    DigestAlgorithm
	Workloads []Workload
}

// Select returns the workloads with the given names, in the requested order.
// An empty selection returns all the workloads.
func (c Catalog) Select(names []string) ([]Workload, error) {
	if len(names) == 0 {
		return c.Workloads, nil
	}

	byName := make(map[string]Workload, len(c.Workloads))
	for _, w := range c.Workloads {
		byName[w.Name] = w
	}

	selected := make([]Workload, 0, len(names))
	for _, n := range names {
		w, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("workload %s: %w", n, ErrNotFound)
		}
		selected = append(selected, w)
	}

	return selected, nil
}
