// Package secrets resolves ${secret:name} references in configuration
// values.
//
// Secrets come from environment variables (EnvProvider) and from a
// directory of mounted secret files (FileProvider). A Manager tries its
// providers in order:
//
//	m := secrets.NewManager(
//	    secrets.NewEnvProvider(""),
//	    fileProvider,
//	)
//	token, err := m.Resolve(ctx, cfg.Server.AdminToken)
//
// With the default prefix, the reference ${secret:admin-token} reads
// LLMSTXT_SECRET_ADMIN_TOKEN, then the file admin-token in the secrets
// directory.
package secrets
