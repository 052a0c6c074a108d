package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// SleepRecord model related methods.
	CreateSleepRecord(ctx context.Context, create *SleepRecord) (*SleepRecord, error)
	ListSleepRecords(ctx context.Context, find *FindSleepRecord) ([]*SleepRecord, error)
	DeleteSleepRecord(ctx context.Context, delete *DeleteSleepRecord) error

	// Habit model related methods.
	CreateHabit(ctx context.Context, create *Habit) (*Habit, error)
	ListHabits(ctx context.Context, find *FindHabit) ([]*Habit, error)
	UpdateHabit(ctx context.Context, update *UpdateHabit) (*Habit, error)
	DeleteHabit(ctx context.Context, delete *DeleteHabit) error
	CreateHabitLog(ctx context.Context, create *HabitLog) (*HabitLog, error)
	ListHabitLogs(ctx context.Context, find *FindHabitLog) ([]*HabitLog, error)

	// Transaction model related methods.
	CreateTransaction(ctx context.Context, create *Transaction) (*Transaction, error)
	ListTransactions(ctx context.Context, find *FindTransaction) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, delete *DeleteTransaction) error

	// CalendarEvent model related methods.
	CreateCalendarEvent(ctx context.Context, create *CalendarEvent) (*CalendarEvent, error)
	ListCalendarEvents(ctx context.Context, find *FindCalendarEvent) ([]*CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, update *UpdateCalendarEvent) (*CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, delete *DeleteCalendarEvent) error

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) error
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)

	// Module model related methods.
	CreateModule(ctx context.Context, create *Module) (*Module, error)
	ListModules(ctx context.Context, find *FindModule) ([]*Module, error)
	UpdateModule(ctx context.Context, update *UpdateModule) (*Module, error)
	DeleteModule(ctx context.Context, delete *DeleteModule) error
	CreateUserModule(ctx context.Context, create *UserModule) (*UserModule, error)
	ListUserModules(ctx context.Context, find *FindUserModule) ([]*UserModule, error)
	UpdateUserModule(ctx context.Context, update *UpdateUserModule) (*UserModule, error)
	DeleteUserModule(ctx context.Context, delete *DeleteUserModule) error
	ListInstalledModules(ctx context.Context, userID int32, enabledOnly bool) ([]*InstalledModule, error)

	// Notification model related methods.
	CreateNotification(ctx context.Context, create *Notification) (*Notification, error)
	ListNotifications(ctx context.Context, find *FindNotification) ([]*Notification, error)
	UpdateNotifications(ctx context.Context, update *UpdateNotification) (int64, error)
	DeleteNotification(ctx context.Context, delete *DeleteNotification) error

	// SystemSetting model related methods.
	UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error)
	ListSystemSettings(ctx context.Context, find *FindSystemSetting) ([]*SystemSetting, error)
}
