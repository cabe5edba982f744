package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"keel/internal/auth"
	"keel/internal/models"
)

// RegisterRoutes вешает REST-поверхность и websocket-канал.
// /api/auth/login — единственный открытый роут; всё остальное за Guard.
func (a *API) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/auth/login", a.Login).Methods(http.MethodPost)

	sub := r.PathPrefix("/api").Subrouter()
	sub.Use(auth.Guard(a.Tokens, a.Users))

	sub.HandleFunc("/auth/me", a.Me).Methods(http.MethodGet)
	sub.HandleFunc("/auth/change-password", a.ChangePassword).Methods(http.MethodPost)

	sub.HandleFunc("/users", a.require(models.PermManageUsers, a.CreateUser)).Methods(http.MethodPost)
	sub.HandleFunc("/users", a.require(models.PermManageUsers, a.ListUsers)).Methods(http.MethodGet)
	sub.HandleFunc("/users/{id:[0-9]+}", a.GetUser).Methods(http.MethodGet)
	sub.HandleFunc("/users/{id:[0-9]+}", a.UpdateUser).Methods(http.MethodPut)
	sub.HandleFunc("/users/{id:[0-9]+}", a.require(models.PermManageUsers, a.DeleteUser)).Methods(http.MethodDelete)
	sub.HandleFunc("/users/{id:[0-9]+}/permissions", a.require(models.PermManageUsers, a.SetUserPermissions)).Methods(http.MethodPut)

	sub.HandleFunc("/companies", a.require(models.PermManageCompanies, a.CreateCompany)).Methods(http.MethodPost)
	sub.HandleFunc("/companies", a.ListCompanies).Methods(http.MethodGet)
	sub.HandleFunc("/companies/{id:[0-9]+}", a.GetCompany).Methods(http.MethodGet)
	sub.HandleFunc("/companies/{id:[0-9]+}", a.require(models.PermManageCompanies, a.UpdateCompany)).Methods(http.MethodPut)
	sub.HandleFunc("/companies/{id:[0-9]+}", a.require(models.PermManageCompanies, a.DeleteCompany)).Methods(http.MethodDelete)

	sub.HandleFunc("/projects", a.require(models.PermManageProjects, a.CreateProject)).Methods(http.MethodPost)
	sub.HandleFunc("/projects", a.ListProjects).Methods(http.MethodGet)
	sub.HandleFunc("/projects/{id:[0-9]+}", a.GetProject).Methods(http.MethodGet)
	sub.HandleFunc("/projects/{id:[0-9]+}", a.require(models.PermManageProjects, a.UpdateProject)).Methods(http.MethodPut)
	sub.HandleFunc("/projects/{id:[0-9]+}", a.require(models.PermManageProjects, a.DeleteProject)).Methods(http.MethodDelete)
	sub.HandleFunc("/projects/{id:[0-9]+}/members", a.require(models.PermManageProjects, a.AddProjectMember)).Methods(http.MethodPost)
	sub.HandleFunc("/projects/{id:[0-9]+}/members/{userID:[0-9]+}", a.require(models.PermManageProjects, a.RemoveProjectMember)).Methods(http.MethodDelete)

	sub.HandleFunc("/tasks", a.require(models.PermManageTasks, a.CreateTask)).Methods(http.MethodPost)
	sub.HandleFunc("/tasks", a.ListTasks).Methods(http.MethodGet)
	sub.HandleFunc("/tasks/{id:[0-9]+}", a.GetTask).Methods(http.MethodGet)
	sub.HandleFunc("/tasks/{id:[0-9]+}", a.require(models.PermManageTasks, a.UpdateTask)).Methods(http.MethodPut)
	sub.HandleFunc("/tasks/{id:[0-9]+}", a.require(models.PermManageTasks, a.DeleteTask)).Methods(http.MethodDelete)
	sub.HandleFunc("/tasks/{id:[0-9]+}/confirm", a.ConfirmTask).Methods(http.MethodPost)

	sub.HandleFunc("/timesheets/start", a.StartTimer).Methods(http.MethodPost)
	sub.HandleFunc("/timesheets/stop", a.StopTimer).Methods(http.MethodPost)
	sub.HandleFunc("/timesheets/current", a.CurrentTimer).Methods(http.MethodGet)
	sub.HandleFunc("/timesheets", a.CreateTimesheet).Methods(http.MethodPost)
	sub.HandleFunc("/timesheets", a.ListTimesheets).Methods(http.MethodGet)
	sub.HandleFunc("/timesheets/{id:[0-9]+}", a.GetTimesheet).Methods(http.MethodGet)
	sub.HandleFunc("/timesheets/{id:[0-9]+}", a.DeleteTimesheet).Methods(http.MethodDelete)

	sub.HandleFunc("/quotes", a.require(models.PermManageQuotes, a.CreateQuote)).Methods(http.MethodPost)
	sub.HandleFunc("/quotes", a.require(models.PermManageQuotes, a.ListQuotes)).Methods(http.MethodGet)
	sub.HandleFunc("/quotes/{id:[0-9]+}", a.require(models.PermManageQuotes, a.GetQuote)).Methods(http.MethodGet)
	sub.HandleFunc("/quotes/{id:[0-9]+}", a.require(models.PermManageQuotes, a.UpdateQuote)).Methods(http.MethodPut)
	sub.HandleFunc("/quotes/{id:[0-9]+}", a.require(models.PermManageQuotes, a.DeleteQuote)).Methods(http.MethodDelete)

	sub.HandleFunc("/calendar/events", a.require(models.PermUseCalendar, a.CreateEvent)).Methods(http.MethodPost)
	sub.HandleFunc("/calendar/events", a.require(models.PermUseCalendar, a.ListEvents)).Methods(http.MethodGet)
	sub.HandleFunc("/calendar/events/{id:[0-9]+}", a.require(models.PermUseCalendar, a.GetEvent)).Methods(http.MethodGet)
	sub.HandleFunc("/calendar/events/{id:[0-9]+}", a.require(models.PermUseCalendar, a.UpdateEvent)).Methods(http.MethodPut)
	sub.HandleFunc("/calendar/events/{id:[0-9]+}", a.require(models.PermUseCalendar, a.DeleteEvent)).Methods(http.MethodDelete)

	sub.HandleFunc("/files", a.require(models.PermUseFiles, a.UploadFile)).Methods(http.MethodPost)
	sub.HandleFunc("/files", a.require(models.PermUseFiles, a.ListFiles)).Methods(http.MethodGet)
	sub.HandleFunc("/files/{id:[0-9]+}", a.require(models.PermUseFiles, a.GetFile)).Methods(http.MethodGet)
	sub.HandleFunc("/files/{id:[0-9]+}/download", a.require(models.PermUseFiles, a.DownloadFile)).Methods(http.MethodGet)
	sub.HandleFunc("/files/{id:[0-9]+}/permissions", a.require(models.PermUseFiles, a.SetFilePermissions)).Methods(http.MethodPut)
	sub.HandleFunc("/files/{id:[0-9]+}", a.require(models.PermUseFiles, a.DeleteFile)).Methods(http.MethodDelete)

	sub.HandleFunc("/chat/messages", a.require(models.PermUseChat, a.SendChatMessage)).Methods(http.MethodPost)
	sub.HandleFunc("/chat/messages", a.require(models.PermUseChat, a.ListChatMessages)).Methods(http.MethodGet)
	sub.HandleFunc("/chat/messages/read", a.require(models.PermUseChat, a.MarkChatRead)).Methods(http.MethodPost)
	sub.HandleFunc("/chat/groups", a.require(models.PermUseChat, a.CreateChatGroup)).Methods(http.MethodPost)
	sub.HandleFunc("/chat/groups", a.require(models.PermUseChat, a.ListChatGroups)).Methods(http.MethodGet)
	sub.HandleFunc("/chat/groups/{id:[0-9]+}", a.require(models.PermUseChat, a.GetChatGroup)).Methods(http.MethodGet)
	sub.HandleFunc("/chat/groups/{id:[0-9]+}/members", a.require(models.PermUseChat, a.AddChatGroupMember)).Methods(http.MethodPost)

	sub.HandleFunc("/notifications", a.ListNotifications).Methods(http.MethodGet)
	sub.HandleFunc("/notifications/unread-count", a.UnreadCount).Methods(http.MethodGet)
	sub.HandleFunc("/notifications/read-all", a.MarkAllNotificationsRead).Methods(http.MethodPost)
	sub.HandleFunc("/notifications/{id:[0-9]+}/read", a.MarkNotificationRead).Methods(http.MethodPost)
	sub.HandleFunc("/notifications/{id:[0-9]+}", a.DeleteNotification).Methods(http.MethodDelete)

	sub.HandleFunc("/settings", a.require(models.PermManageSettings, a.ListSettings)).Methods(http.MethodGet)
	sub.HandleFunc("/settings/{key}", a.require(models.PermManageSettings, a.SetSetting)).Methods(http.MethodPut)
	sub.HandleFunc("/settings/{key}", a.require(models.PermManageSettings, a.DeleteSetting)).Methods(http.MethodDelete)

	sub.HandleFunc("/dashboard", a.Dashboard).Methods(http.MethodGet)
	sub.HandleFunc("/reports/timesheets", a.require(models.PermViewReports, a.TimesheetReport)).Methods(http.MethodGet)

	// websocket: токен проверяется Guard'ом до апгрейда
	sub.HandleFunc("/ws", a.Hub.Serve).Methods(http.MethodGet)
}
