// Package githubcli wraps the GitHub CLI for repository listing and health metrics.
//
// Every operation builds a gh argument list, runs it through an injected
// executor, and decodes the JSON gh prints into typed results, so callers and
// tests never depend on a real gh installation.
package githubcli
