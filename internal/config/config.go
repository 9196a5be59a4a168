package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "IEQ-Connect/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "IEQ Connect"
	AppID             = "com.github.tartampluch.ieq-connect"
	KeyringService    = "com.github.tartampluch.ieq-connect"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
	DataDirName       = "data"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for the collection files and logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig      = "config"
	FlagDebug       = "debug"
	FlagYes         = "yes"
	FlagPrint       = "print"
	FlagToday       = "today"
	FlagNext7       = "next7"
	FlagMonth       = "month"
	FlagKind        = "kind"
	FlagName        = "name"
	FlagPhone       = "phone"
	FlagBirthDate   = "birth-date"
	FlagAddress     = "address"
	FlagTitle       = "title"
	FlagDay         = "day"
	FlagTime        = "time"
	FlagSecondTime  = "secondary-time"
	FlagDescription = "description"
	FlagIcon        = "icon"
	FlagUsername    = "username"
	FlagPassword    = "password"
	FlagRole        = "role"
	FlagOutput      = "output"

	FlagDescConfig      = "Path to the settings file"
	FlagDescDebug       = "Enable debug logging to stderr"
	FlagDescYes         = "Skip the confirmation prompt"
	FlagDescPrint       = "Print the WhatsApp link instead of opening it"
	FlagDescToday       = "Birthdays falling today"
	FlagDescNext7       = "Birthdays within the next seven days"
	FlagDescMonth       = "Birthdays in month N (1-12)"
	FlagDescKind        = "Collection: member or visitor"
	FlagDescName        = "Full name"
	FlagDescPhone       = "Phone number"
	FlagDescBirthDate   = "Birth date (YYYY-MM-DD)"
	FlagDescAddress     = "Postal address"
	FlagDescTitle       = "Event title"
	FlagDescDay         = "Day of the week (e.g. Domingo)"
	FlagDescTime        = "Start time (HH:MM)"
	FlagDescSecondTime  = "Second start time (HH:MM)"
	FlagDescDescription = "Event description"
	FlagDescIcon        = "Event icon"
	FlagDescUsername    = "Login name"
	FlagDescPassword    = "Password (prompted when omitted)"
	FlagDescRole        = "Role: ADMIN or MEMBER"
	FlagDescOutput      = "Output file (stdout when omitted)"

	// Annotation on commands that run without a session or during a forced password change.
	AnnotSession      = "session"
	AnnotSessionNone  = "none"
	AnnotSessionLimit = "limited"

	// Prompts and output
	MsgVersionOutput   = "%s version %s (%s, built %s) %s/%s\n"
	MsgConfirmSuffix   = " [y/N]: "
	MsgAborted         = "Aborted."
	MsgPromptPassword  = "Password: "
	MsgPromptNewPass   = "New password: "
	MsgPromptConfirm   = "Confirm password: "
	MsgPromptWelcome   = "Send the welcome message to %s now?"
	MsgLoggedIn        = "Logged in as %s (%s)\n"
	MsgLoggedOut       = "Logged out."
	MsgWhoami          = "%s (%s) %s\n"
	MsgCreated         = "Created %s\n"
	MsgSaved           = "Saved %s\n"
	MsgRemoved         = "Deleted %s\n"
	MsgImported        = "Imported %d, skipped %d\n"
	MsgServing         = "Serving http://%s:%s%s and %s (Ctrl+C to stop)\n"
	MsgContactDone     = "%s: %s\n"
	MsgDashCounts      = "Members: %d  Visitors: %d  Events: %d  New visitors this month: %d\n"
	MsgDashRecent      = "Recent visitors:"
	MsgDashBirthdays   = "Birthdays today:"
	MsgListEmpty       = "(none)"
	FormatListItem     = "  - %s (%s)\n"
	TableSep           = "\t"
	TabPadding         = 2
	HeaderPeople       = "ID\tNAME\tPHONE\tBIRTH\tREGISTERED\tWELCOME\tBIRTHDAY"
	HeaderEvents       = "ID\tDAY\tTIME\tTITLE"
	HeaderUsers        = "ID\tUSERNAME\tNAME\tROLE"
	HeaderBirthdays    = "DATE\tID\tNAME\tKIND\tAGE\tSTATUS"
	ConfirmYes         = "y"
	ConfirmYesLong     = "yes"
	ConfirmYesPT       = "s"
	ConfirmYesLongPT   = "sim"
)

// -----------------------------------------------------------------------------
// Persistence Keys
// -----------------------------------------------------------------------------

const (
	KeyVisitors = "ieq_connect_visitors"
	KeyMembers  = "ieq_connect_members"
	KeyEvents   = "ieq_connect_events"
	KeyUsers    = "ieq_connect_users"
	KeySession  = "ieq_connect_session"
	KeySchema   = "ieq_connect_schema"

	// Session storage selected by the "session" setting.
	SessionKeyring = "keyring"
	SessionFile    = "file"

	// FileExtJSON is appended to each key by the file backend.
	FileExtJSON = ".json"
	// FilePatternTemp is the os.CreateTemp pattern suffix used for atomic writes.
	FilePatternTemp = "-*.tmp"

	// SchemaVersion is the canonical Person schema (v2 adds lastWelcomeSentAt).
	SchemaVersion       = 2
	SchemaVersionLegacy = 1
)

// -----------------------------------------------------------------------------
// Seed Data
// -----------------------------------------------------------------------------

const (
	AdminID              = "admin-001"
	AdminUsername        = "admin"
	AdminName            = "Administrador IEQ"
	DefaultAdminPassword = "admin"
	LegacyAdminPassword  = "123"

	MinPasswordLength = 4
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort          = 18081
	DefaultRefreshMin    = 15
	DefaultLanguage      = "pt-BR"
	DefaultCountryCode   = "55"
	DefaultLeapYear      = 2000 // Leap year fallback for vCard dates like --02-29
	UIDSalt              = "ieq-connect-v1-" // Salt for deterministic UID generation
	UpcomingWindowDays   = 7
	RecentVisitorsLimit  = 3
	DefaultEventIcon     = "⛪"
)

// SupportedLanguages defines the list of shipped message languages (BCP 47).
var SupportedLanguages = []string{"pt-BR", "en"}

// -----------------------------------------------------------------------------
// Messaging (WhatsApp click-to-chat)
// -----------------------------------------------------------------------------

const (
	WhatsAppBaseURL  = "https://wa.me/"
	WhatsAppTextKey  = "text"
	QueryPlusEscaped = "%20"

	// Translation keys for outbound messages.
	TKeyMsgWelcome        = "msg_welcome"
	TKeyMsgBirthday       = "msg_birthday"
	TKeyMsgAgendaItem     = "msg_agenda_item"
	TKeyMsgAgendaTimes    = "msg_agenda_times"
	TKeyMsgAgendaEmpty    = "msg_agenda_empty"
	TKeyEvtSummary        = "event_summary"
	TKeyEvtSummaryAge     = "event_summary_age"
	TKeyEvtSummaryBirth   = "event_summary_birth"
	TKeyLblAlreadySent    = "lbl_already_sent"
	TKeyLblSendBirthday   = "lbl_send_birthday"
	TKeyLblToday          = "lbl_today"
	TKeyLblMember         = "lbl_member"
	TKeyLblVisitor        = "lbl_visitor"
	TKeyLblNoBirthdays    = "lbl_no_birthdays"
	TKeyLblNever          = "lbl_never"
	TKeyLblSentWelcome    = "lbl_sent_welcome"
	TKeyLblSentBirthday   = "lbl_sent_birthday"
	TKeyLblConfirmDelete  = "lbl_confirm_delete"
	TKeyLblLoginFailed    = "lbl_login_failed"
	TKeyLblMustChangePass = "lbl_must_change_password"
)

// Browser launchers per GOOS.
const (
	OpenCmdLinux   = "xdg-open"
	OpenCmdDarwin  = "open"
	OpenCmdWindows = "rundll32"
	OpenArgWindows = "url.dll,FileProtocolHandler"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion      = "2.0"
	ICalProdid       = "-//IEQ Connect//Engine//PT"
	ICalCalAgenda    = "Agenda IEQ"
	ICalCalBirthdays = "Aniversariantes IEQ"
	ICalMethod       = "PUBLISH"
	ICalScale        = "GREGORIAN"
	ICalComponent    = "VALARM"
	ICalAction       = "DISPLAY"
	ICalDomain       = "ieqconnect"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardVersion = "4.0"
	VCardKind    = "X-IEQ-KIND"
	VCardRegDate = "X-IEQ-REGISTERED"

	DefaultICalRefresh = 1 * time.Hour
	AgendaEventLength  = 2 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Date layouts
	DateFormatISO       = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatDisplay   = "02/01/2006"
	TimeFormatClock     = "15:04"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
	FormatEventUID  = "%s-%s@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteAgenda         = "/agenda.ics"
	RouteBirthdays      = "/birthdays.ics"
	AddrSeparator       = ":"

	FeedAgenda    = "agenda"
	FeedBirthdays = "birthdays"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrValidation        = "validation failed"
	ErrDuplicateID       = "an entity with this id already exists"
	ErrUnknownPerson     = "person is neither a member nor a visitor"
	ErrUnknownKind       = "unknown person kind"
	ErrUnknownContact    = "unknown contact kind"
	ErrStoreRead         = "failed to read collection"
	ErrStoreWrite        = "failed to write collection"
	ErrStoreDecode       = "failed to decode collection"
	ErrStoreEncode       = "failed to encode collection"
	ErrSchemaMigrate     = "schema migration failed"
	ErrSessionRead       = "failed to read session"
	ErrSessionWrite      = "failed to write session"
	ErrInvalidCreds      = "invalid username or password"
	ErrNotLoggedIn       = "not logged in"
	ErrMustChangePass    = "password change required before continuing"
	ErrPasswordShort     = "password must have at least 4 characters"
	ErrPasswordMismatch  = "passwords do not match"
	ErrNotFound          = "record not found"
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrVCardEncode       = "failed to encode vCard"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrDateParse         = "unable to parse date"
	ErrRRule             = "failed to build recurrence rule"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrConfigDir         = "could not determine user config dir"
	ErrCreateDir         = "could not create app directory"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrLocNotInit        = "localizer not initialized"
	ErrSettingsRead      = "failed to read settings file"
	ErrSettingsParse     = "failed to parse settings file"
	ErrSettingsInvalid   = "settings validation failed"
	ErrTrigger           = "reminderTrigger is not an ISO 8601 duration"
	HintSessionFile      = "set \"session: file\" in settings.yaml on hosts without a keyring"
	ErrLanguage          = "unsupported language tag"
	ErrOpenLink          = "failed to open link"
	ErrPhoneEmpty        = "phone number has no digits"
	ErrMonthRange        = "month must be between 1 and 12"
	ErrFilterConflict    = "choose only one of --today, --next7, --month"
	ErrPromptRead        = "failed to read confirmation"
	ErrSendFailed        = "notification dispatch failed"
	ErrFeedRefresh       = "feed refresh failed"
	ErrNoSuchFeed        = "no such feed"
	ErrAdminUndeletable  = "the seed administrator cannot be removed"
	ErrUsernameTaken     = "username already in use"
	ErrReadPasswordInput = "failed to read password"
	ErrAdminRequired     = "this command requires the ADMIN role"
	ErrUnknownWeekday    = "unrecognised day of the week"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Aniversário: %s"
	FallbackSummaryAge   = "Aniversário: %s (%d)"
	FallbackSummaryBirth = "Aniversário: %s (nascimento)"
	FallbackName         = "Sem nome"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgStoreOpened     = "Store opened"
	MsgSeeded          = "Collection seeded"
	MsgAppended        = "Entity appended"
	MsgUpdated         = "Entity updated"
	MsgUpdateMiss      = "Update ignored: no entity with this id"
	MsgDeleted         = "Entity deleted"
	MsgDeleteMiss      = "Delete ignored: no entity with this id"
	MsgDeleteProtected = "Delete ignored: entity is protected"
	MsgAdminMigrated   = "Seed administrator password upgraded"
	MsgSchemaMigrated  = "Schema migrated"
	MsgSessionSet      = "Session updated"
	MsgSessionCleared  = "Session cleared"
	MsgSessionSynced   = "Session refreshed after user update"
	MsgContactStamped  = "Contact stamped"
	MsgNotifyFailed    = "Notification dispatch failed, contact still stamped"
	MsgLinkOpened      = "WhatsApp link dispatched"
	MsgLoginOK         = "Login succeeded"
	MsgLoginFailed     = "Login failed"
	MsgPasswordChanged = "Password changed"
	MsgUserCreated     = "User created"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedWeekday  = "Skipping event with unknown weekday"
	MsgSkippedPerson   = "Skipping person with invalid birth date"
	MsgGenSuccess      = "Calendar generation successful"
	MsgImportDone      = "vCard import finished"
	MsgBdayToday       = "Birthday found today"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Feed cache updated"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgRefreshReq      = "Feed refresh requested"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgSettingsMissing = "Settings file not found, using defaults"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyInterval   = "interval"
	LogKeyUser       = "user"
	LogKeyID         = "id"
	LogKeyCollection = "collection"
	LogKeyCount      = "count"
	LogKeyKind       = "kind"
	LogKeyContact    = "contact"
	LogKeyDate       = "date"
	LogKeyFrom       = "from"
	LogKeyTo         = "to"
	LogKeyFeed       = "feed"
	LogKeyValue      = "value"
	LogKeyStats      = "stats"
	LogKeyTotal      = "total"
	LogKeyFound      = "found"
	LogKeyToday      = "today"
	LogKeyName       = "name"
	LogKeyDOB        = "date_of_birth"
	LogKeyDuration   = "duration_ms"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyPath       = "path"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompStore    = "store"
	CompSession  = "session"
	CompEngine   = "engine"
	CompUpdater  = "contact_updater"
	CompNotifier = "notifier"
	CompAuth     = "auth"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompCLI      = "cli"
	CompI18n     = "i18n"
	CompSettings = "settings"
)
