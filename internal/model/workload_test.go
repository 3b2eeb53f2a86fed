package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/diffrun/internal/model"
)

func TestNormalizeArch(t *testing.T) {
	tests := map[string]struct {
		name    string
		expArch model.Arch
		expBits int
		expErr  bool
	}{
		"amd64 should be x86-64":     {name: "amd64", expArch: model.ArchX86_64, expBits: 64},
		"x86_64 should be x86-64":    {name: "x86_64", expArch: model.ArchX86_64, expBits: 64},
		"X64 should be x86-64":       {name: " X64 ", expArch: model.ArchX86_64, expBits: 64},
		"i686 should be x86":         {name: "i686", expArch: model.ArchX86, expBits: 32},
		"386 should be x86":          {name: "386", expArch: model.ArchX86, expBits: 32},
		"aarch64 should be arm64":    {name: "aarch64", expArch: model.ArchARM64, expBits: 64},
		"Unknown arches should fail": {name: "sparc", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			arch, err := model.NormalizeArch(test.name)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expArch, arch)
			assert.Equal(t, test.expBits, arch.Bits())
		})
	}
}

func TestNormalizeArches(t *testing.T) {
	arches, err := model.NormalizeArches([]string{"x86_64", "aarch64", "amd64", "i386"})
	require.NoError(t, err)
	assert.Equal(t, []model.Arch{model.ArchARM64, model.ArchX86, model.ArchX86_64}, arches)

	_, err = model.NormalizeArches([]string{"amd64", "mips"})
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestWorkloadCommands(t *testing.T) {
	w := model.Workload{
		Name:      "sort",
		Reference: "/ref/{arch}/sort",
		Candidate: "/cand/{arch}/sort{bits}",
		Args:      []string{"-n", "in-{bits}.txt"},
		Input:     []byte("3\n1\n"),
	}

	tests := map[string]struct {
		arch     model.Arch
		selfTest bool
		expRef   model.CommandSpec
		expCand  model.CommandSpec
	}{
		"Placeholders should be expanded for the arch": {
			arch:    model.ArchX86,
			expRef:  model.CommandSpec{Path: "/ref/x86/sort", Args: []string{"-n", "in-32.txt"}, Input: []byte("3\n1\n")},
			expCand: model.CommandSpec{Path: "/cand/x86/sort32", Args: []string{"-n", "in-32.txt"}, Input: []byte("3\n1\n")},
		},

		"Self test should use the reference as the candidate": {
			arch:     model.ArchARM64,
			selfTest: true,
			expRef:   model.CommandSpec{Path: "/ref/arm64/sort", Args: []string{"-n", "in-64.txt"}, Input: []byte("3\n1\n")},
			expCand:  model.CommandSpec{Path: "/ref/arm64/sort", Args: []string{"-n", "in-64.txt"}, Input: []byte("3\n1\n")},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ref, cand := w.Commands(test.arch, test.selfTest)
			assert.Equal(t, test.expRef, ref)
			assert.Equal(t, test.expCand, cand)
		})
	}
}

func TestWorkloadValidate(t *testing.T) {
	tests := map[string]struct {
		workload model.Workload
		expErr   bool
	}{
		"A valid workload should not fail": {
			workload: model.Workload{Name: "w", Reference: "/a", Candidate: "/b"},
		},

		"Missing name should fail": {
			workload: model.Workload{Reference: "/a", Candidate: "/b"},
			expErr:   true,
		},

		"Missing candidate should fail": {
			workload: model.Workload{Name: "w", Reference: "/a"},
			expErr:   true,
		},

		"Negative timeout should fail": {
			workload: model.Workload{Name: "w", Reference: "/a", Candidate: "/b", Timeout: -1},
			expErr:   true,
		},

		"Unknown mode should fail": {
			workload: model.Workload{Name: "w", Reference: "/a", Candidate: "/b", Mode: "other"},
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.workload.Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCatalogSelect(t *testing.T) {
	c := model.Catalog{Workloads: []model.Workload{{Name: "a"}, {Name: "b"}, {Name: "c"}}}

	all, err := c.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := c.Select([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []model.Workload{{Name: "c"}, {Name: "a"}}, got)

	_, err = c.Select([]string{"a", "z"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
