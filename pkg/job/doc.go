// Package job runs background tasks on river, a PostgreSQL-backed queue.
//
// Every task shares one river job kind carrying the task name and a JSON
// payload, so adding a task is a matter of implementing [Task] or
// [ScheduledTask] and registering it:
//
//	m, err := job.NewManager(pool,
//		job.WithTask(tasks.NewVerifyDomain(v)),
//		job.WithScheduledTask(tasks.NewRecheckDomains(s, v, "*/30 * * * *")),
//	)
//
// Schedules are five-field cron expressions or descriptors such as @hourly.
// [Migrate] creates the river tables before the first Start.
package job
