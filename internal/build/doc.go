// Package build turns a route manifest into the configured JavaScript
// artifacts.
//
// This package handles:
//   - Loading the route manifest and placeholder registry from config
//   - Generating each artifact with its configured writer and filters
//   - Minification of generated output
//   - Atomic writes, so readers never see a partial artifact
//   - Optional upload of artifacts to an S3 bucket
//
// # Usage
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Built in %s\n", result.Duration)
//	for _, a := range result.Artifacts {
//	    fmt.Printf("%s (%d routes, %d bytes)\n", a.Output, a.Routes, a.Size)
//	}
package build
