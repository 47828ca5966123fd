// Package allocation places applicants in hostels.
//
// Assigner.ManualAssign validates the selection and checks it against the
// hostel's remaining capacity before any request is sent. The filters narrow
// fetched lists the way the allocation and registration screens need them.
package allocation
