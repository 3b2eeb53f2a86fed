// Package lib provides a Go SDK for differential testing of programs.
//
// A comparison runs a trusted reference program and a candidate program with
// the same arguments, input and environment, and checks they behave the same:
// identical stdout, identical stderr and the same exit code. The output is
// never buffered, it's summarized in streaming digests while the programs run.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Compare(ctx,
//	    lib.Command{Path: "/usr/bin/sort", Args: []string{"-n"}},
//	    lib.Command{Path: "/opt/mysort/bin/sort", Args: []string{"-n"}},
//	    lib.CompareOpts{RunOpts: lib.RunOpts{Input: []byte("3\n1\n2\n"), Timeout: 30 * time.Second}},
//	)
//	switch {
//	case err == nil:
//	    fmt.Println("PASS")
//	case errors.Is(err, lib.ErrOutputMismatch), errors.Is(err, lib.ErrExitCodeMismatch):
//	    fmt.Println("FAIL:", err)
//	default:
//	    log.Fatal(err)
//	}
//
// # Timeouts
//
// The timeout is not a limit on the total run time. A program fails with
// [ErrReadinessTimeout] when it produces no output for a whole timeout, and
// with [ErrExitTimeout] when it closes its output but doesn't exit within the
// timeout. Programs that keep writing can run for as long as they need.
// Timed out programs are killed together with every process they started.
//
// # Output modes
//
// [OutputModeSeparate] digests stdout and stderr independently.
// [OutputModeCombined] gives both the same pipe, so the interleaving of the
// two streams is also compared.
//
// # Workload catalogs
//
// [Client.RunSuite] runs the workloads of a YAML catalog:
//
//	arches: [x86-64, arm64]
//	env:
//	  LD_LIBRARY_PATH: /opt/libs/{arch}
//	timeout: 30s
//	workloads:
//	  - name: sort-numbers
//	    reference: /usr/bin/sort
//	    candidate: /opt/mysort/{arch}/sort
//	    args: ["-n"]
//	    input_file: data/numbers.txt
//
// The `{arch}` and `{bits}` placeholders are expanded for every architecture.
//
// # History
//
// Verdicts are recorded when [CompareOpts].Record or [SuiteOpts].Record are
// set, and can be queried with [Client.ListVerdicts] and [Client.GetVerdict].
// Use [Config].InMemory for a history that is not persisted.
//
// # Errors
//
// All errors can be matched with [errors.Is] against the sentinel errors of
// this package ([ErrNotFound], [ErrNotValid], [ErrOutputMismatch]...).
package lib
