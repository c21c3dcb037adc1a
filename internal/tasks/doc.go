// Package tasks holds the background jobs that keep custom domain
// verification current: verify_domain runs once after a domain is saved,
// recheck_domains runs on a cron schedule over every configured domain.
package tasks
