// Package gitrepo inspects and updates local git clones.
//
// RepositoryManager answers the questions a sync needs (does the clone exist,
// is it clean, is it behind its upstream) and performs the only two mutations
// a sync may make: clone and fast-forward pull. remote_url.go selects and
// normalizes the URLs clones are created from.
package gitrepo
