package httptransport

import "expvar"

var (
	metricJoinTotal   = expvar.NewInt("room_join_total")
	metricJoinErrors  = expvar.NewInt("room_join_errors_total")
	metricLeaveTotal  = expvar.NewInt("room_leave_total")
	metricLeaveErrors = expvar.NewInt("room_leave_errors_total")
)
