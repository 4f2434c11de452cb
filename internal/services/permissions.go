package services

// Permission slugs guarding the API. They are seeded and granted to the
// admin role by Seeder.
const (
	PermUsersCreate = "users.create"
	PermUsersUpdate = "users.update"
	PermUsersDelete = "users.delete"

	PermRolesManage       = "roles.manage"
	PermPermissionsManage = "permissions.manage"

	PermCategoriesCreate = "categories.create"
	PermCategoriesUpdate = "categories.update"
	PermCategoriesDelete = "categories.delete"

	PermDocumentsCreate = "documents.create"
	PermDocumentsUpdate = "documents.update"
	PermDocumentsDelete = "documents.delete"

	PermRevisionsCreate  = "revisions.create"
	PermRevisionsUpdate  = "revisions.update"
	PermRevisionsDelete  = "revisions.delete"
	PermRevisionsApprove = "revisions.approve"

	PermHistoryCreate = "history.create"
	PermHistoryUpdate = "history.update"
	PermHistoryDelete = "history.delete"

	PermNotificationsSend = "notifications.send"
)

// DefaultPermissions lists every built-in slug with a description.
var DefaultPermissions = []struct {
	Slug        string
	Description string
}{
	{PermUsersCreate, "Create users"},
	{PermUsersUpdate, "Update any user"},
	{PermUsersDelete, "Delete users"},
	{PermRolesManage, "Create, update, delete and assign roles"},
	{PermPermissionsManage, "Assign permissions to roles"},
	{PermCategoriesCreate, "Create categories"},
	{PermCategoriesUpdate, "Update categories"},
	{PermCategoriesDelete, "Delete categories"},
	{PermDocumentsCreate, "Create documents"},
	{PermDocumentsUpdate, "Update documents"},
	{PermDocumentsDelete, "Delete documents"},
	{PermRevisionsCreate, "Create document revisions"},
	{PermRevisionsUpdate, "Update document revisions"},
	{PermRevisionsDelete, "Delete document revisions"},
	{PermRevisionsApprove, "Approve or reject document revisions"},
	{PermHistoryCreate, "Record document history"},
	{PermHistoryUpdate, "Update document history"},
	{PermHistoryDelete, "Delete document history"},
	{PermNotificationsSend, "Send notifications to users"},
}
