package enums

// AuditAction names the mutating operations recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate      AuditAction = "create"
	AuditActionUpdate      AuditAction = "update"
	AuditActionDelete      AuditAction = "delete"
	AuditActionCourierSend AuditAction = "courier_send"
	AuditActionCourierSync AuditAction = "courier_sync"
)
