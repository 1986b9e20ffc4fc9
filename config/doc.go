// Package config provides configuration loading and validation for the
// sfs sandbox server.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SFS_SANDBOX_ prefix)
//  4. CLI flags
//
// Without explicit files, ./sandbox.yaml is read when present.
//
// # Usage
//
//	cfg, err := config.Load([]string{"sandbox.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// Config keys map to environment variables with the SFS_SANDBOX_ prefix:
//   - server.port → SFS_SANDBOX_SERVER_PORT
//   - storage.path → SFS_SANDBOX_STORAGE_PATH
//   - auth.mode → SFS_SANDBOX_AUTH_MODE
//   - auth.users.file → SFS_SANDBOX_AUTH_USERS_FILE
//
// # Example
//
//	server:
//	  port: 5709
//	storage:
//	  path: ./sandbox-data
//	auth:
//	  mode: private
//	  users:
//	    inline:
//	      - username: tower
//	        password: s3cret
//	    file: ./users.json
//
// Private mode requires at least one inline user or a users file.
package config
