package ports

type SchedulerService interface {
	Start()
	Stop()

	AddNow(delay int64) int64
	AfterNow(ts int64) bool
	ScheduleTaskOnce(at int64, task func()) error
}
