// Package sfs is a client for the Secure File Service, a namespaced file store
// organized as organization → context → file.
//
// An invocation performs exactly one of six operations:
//
//   - put: zip a local directory and upload it to a context
//   - get: download a named file into a local directory
//   - delete: remove a named file from a context
//   - list_files: list the files of a context
//   - file_most_recent: return the listing entry with the greatest date
//   - list_contexts: list every context
//
// # Key Components
//
//   - Invocation: the fully resolved parameters of one operation
//   - Executor: dispatches an Invocation to a Client and shapes the Result
//   - Client: the request layer, implemented over HTTP by package clientcli
//   - Result / Failure: the success and error documents of an invocation
//
// # Example Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//	    URL:      "https://sfs.example.com",
//	    User:     "user",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sfs.NewExecutor(client, nil).Execute(ctx, sfs.Invocation{
//	    Operation: sfs.OpListFiles,
//	    Target:    sfs.Target{Org: "acme", Context: "backups"},
//	})
//	if err != nil {
//	    failure := sfs.FailureFrom(err)
//	    ...
//	}
//
// See package sandbox for a local server speaking the same API.
package sfs
