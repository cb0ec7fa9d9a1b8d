// Package ocm maps typed Go values onto external command lines.
//
// OCM (object command mapping) inverts the usual direction of argument
// parsing: a command is declared once as a schema of named parameters
// (options, flags, positional arguments), and each instance of that schema
// converts keyword values into a validated, correctly ordered argv, runs it
// as a child process, and exposes structured "intermediate results" the
// process emits on stdout.
//
// A schema is registered explicitly, typically in a package-level variable:
//
//	var lsSchema = ocm.MustDefine("ls", ocm.WithFields(
//		ocm.NewFlag("-l", "long"),
//		ocm.NewArgument("path", ocm.WithDefault(".")),
//	))
//
// Instances bind keyword values, converting and validating every field at
// construction:
//
//	cmd, err := lsSchema.New(ocm.Values{"long": true, "path": "/tmp"})
//	result, err := cmd.Invoke(ctx)
//
// Field order in the rendered argv follows parameter declaration order,
// tracked by a process-wide creation counter, never by map iteration.
//
// Intermediate results are lines of child stdout of the form
// "OCMIR:<name>:<payload>". Payloads are decoded as JSON when possible and
// returned as raw text otherwise:
//
//	count, err := result.Get("count")
//
// Declarative schema definitions in YAML or CUE live in the schemafile
// package; a durable SQLite invocation log lives in the history package.
package ocm
