//go:build unix

package lib_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/diffrun/pkg/lib"
)

// This example shows how to compare two programs.
func Example_compare() {
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{InMemory: true})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	err = client.Compare(ctx,
		lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
		lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
		lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}},
	)
	if err != nil {
		panic(err)
	}

	fmt.Println("PASS")

	// Output:
	// PASS
}

// This example shows how to detect a behavior difference.
func Example_mismatch() {
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{InMemory: true})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	err = client.Compare(ctx,
		lib.Command{Path: "/bin/echo", Args: []string{"hello"}},
		lib.Command{Path: "/bin/echo", Args: []string{"bye"}},
		lib.CompareOpts{RunOpts: lib.RunOpts{Timeout: 10 * time.Second}},
	)

	fmt.Println(errors.Is(err, lib.ErrOutputMismatch))

	// Output:
	// true
}

// This example shows how to get the digests of a single program.
func Example_hash() {
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{InMemory: true})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	res, err := client.Hash(ctx, lib.Command{Path: "/bin/echo", Args: []string{"hello"}}, lib.RunOpts{Timeout: 10 * time.Second})
	if err != nil {
		panic(err)
	}

	fmt.Println(res.ExitCode, res.Digests["stdout"])

	// Output:
	// 0 b1946ac92492d2347c6235b4d2611184
}

// This example shows how to run a workload catalog and record the verdicts.
func Example_suite() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "diffrun-example-suite-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	catalog := `
timeout: 10s
workloads:
  - name: echo
    reference: /bin/echo
    candidate: /bin/echo
    args: ["hello"]
`
	catalogPath := filepath.Join(dir, "diffrun.yaml")
	if err := os.WriteFile(catalogPath, []byte(catalog), 0o644); err != nil {
		panic(err)
	}

	client, err := lib.New(ctx, lib.Config{DBPath: filepath.Join(dir, "diffrun.db")})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	summary, err := client.RunSuite(ctx, lib.SuiteOpts{
		CatalogPath: catalogPath,
		Arches:      []string{"x86-64"},
		Record:      true,
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("passed: %d, failed: %d\n", summary.Passed, summary.Failed)

	verdicts, err := client.ListVerdicts(ctx, nil)
	if err != nil {
		panic(err)
	}
	for _, v := range verdicts {
		fmt.Printf("%s %s %s\n", v.Workload, v.Arch, v.Status)
	}

	// Output:
	// passed: 1, failed: 0
	// echo x86-64 pass
}
