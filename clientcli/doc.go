// Package clientcli implements the Secure File Service request layer over
// HTTP, parameter resolution for the sfs command, and result formatting.
//
// Every request is sent to the origin (scheme and host) of the configured
// URL with basic auth. TLS certificates are only verified when
// Config.CertVerify is set.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		URL:      "https://sfs.example.com",
//		User:     "user",
//		Password: "secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.ListFiles(ctx, sfs.Target{Org: "acme", Context: "backups"})
//
// # Parameter Resolution
//
// Parameters are merged from ordered sources with Resolve; later sources win
// for the fields they set:
//
//	params := clientcli.Resolve(
//		clientcli.ParamsFromEnv(os.LookupEnv),
//		clientcli.ParamsFromFlags(cmd.Flags()),
//	)
//	inv, err := params.Invocation(time.Now(), cwd)
//
// Only TOWER_USERNAME, TOWER_PASSWORD and SFS_UPLOAD_URL are read from the
// environment.
//
// # Output Formatting
//
//	formatter, err := clientcli.NewFormatter("json", false)
//	formatter.FormatResult(os.Stdout, inv.Operation, result)
package clientcli
