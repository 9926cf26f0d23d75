package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/auth"
	"github.com/workdesk/workdesk/internal/config"
	"github.com/workdesk/workdesk/internal/database"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/reports"
	"github.com/workdesk/workdesk/internal/services/allocation"
	"github.com/workdesk/workdesk/internal/services/catalog"
	"github.com/workdesk/workdesk/internal/services/orders"
	"github.com/workdesk/workdesk/internal/services/receiving"
	"github.com/workdesk/workdesk/internal/services/stocktake"
	"github.com/workdesk/workdesk/internal/tui/components"
	ordviews "github.com/workdesk/workdesk/internal/tui/views/orders"
	rcptviews "github.com/workdesk/workdesk/internal/tui/views/receiving"
	reqviews "github.com/workdesk/workdesk/internal/tui/views/requests"
	stviews "github.com/workdesk/workdesk/internal/tui/views/stocktake"
	whviews "github.com/workdesk/workdesk/internal/tui/views/warehouse"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 120

// Module represents a view module in the application.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleWarehouse Module = "warehouse"
	ModuleRequests  Module = "requests"
	ModuleReceipts  Module = "receipts"
	ModuleStocktake Module = "stocktake"
	ModuleOrders    Module = "orders"
	ModuleReports   Module = "reports"
	ModuleUsers     Module = "users"
	ModuleHelp      Module = "help"
)

// promptKind identifies the single-line prompt shown at the bottom of a
// module (count entry, cancellation reason).
type promptKind int

const (
	promptNone promptKind = iota
	promptCount
	promptCancelReason
)

// App is the main Bubble Tea application model.
type App struct {
	// Dependencies
	db     *database.DB
	config *config.Config
	logger *slog.Logger

	// Services
	authSvc      *auth.Service
	catalogSvc   *catalog.Service
	allocSvc     *allocation.Service
	receivingSvc *receiving.Service
	stocktakeSvc *stocktake.Service
	ordersSvc    *orders.Service
	reportsSvc   *reports.Service

	// Views
	catalogView  *whviews.CatalogView
	resourceForm *whviews.ResourceForm
	queueView    *reqviews.QueueView
	journalView  *rcptviews.JournalView
	receiptForm  *rcptviews.ReceiptForm
	sessionView  *stviews.SessionView
	boardView    *ordviews.BoardView
	requestForm  *components.Form
	userForm     *components.Form

	// Identity
	currentUser *models.User

	// Login screen state
	loginUser  *components.Input
	loginPass  *components.Input
	loginFocus int
	loginErr   string

	// UI state
	theme    *Theme
	keys     KeyMap
	width    int
	height   int
	ready    bool
	quitting bool
	confirm  *pendingConfirm

	// Current view
	currentModule  Module
	previousModule Module
	showDetail     bool
	showForm       bool
	searchMode     bool
	searchInput    string
	prompt         promptKind
	promptInput    string

	// Alerts
	alerts []Alert

	// Dashboard data
	summary      *reports.WarehouseSummary
	pendingCount int
	now          time.Time

	// Users module
	users   []*models.User
	userSel int
}

// pendingConfirm is a modal yes/no question. quit exits the program
// instead of running cmd.
type pendingConfirm struct {
	message string
	cmd     tea.Cmd
	quit    bool
}

// Alert represents a status line message.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// tickMsg is sent periodically to update the UI.
type tickMsg time.Time

// New creates a new App instance.
func New(db *database.DB, cfg *config.Config, logger *slog.Logger) *App {
	authSvc := auth.NewService(db.DB, logger)
	catalogSvc := catalog.NewService(db.DB)
	allocSvc := allocation.NewService(db.DB, logger)
	receivingSvc := receiving.NewService(db.DB, cfg.Workshop.DefaultUnit, logger)
	stocktakeSvc := stocktake.NewService(db.DB, logger)
	ordersSvc := orders.NewService(db.DB, logger)
	reportsSvc := reports.NewService(db.DB)

	a := &App{
		db:     db,
		config: cfg,
		logger: logger,

		authSvc:      authSvc,
		catalogSvc:   catalogSvc,
		allocSvc:     allocSvc,
		receivingSvc: receivingSvc,
		stocktakeSvc: stocktakeSvc,
		ordersSvc:    ordersSvc,
		reportsSvc:   reportsSvc,

		catalogView: whviews.NewCatalogView(catalogSvc),
		queueView:   reqviews.NewQueueView(allocSvc, catalogSvc),
		journalView: rcptviews.NewJournalView(receivingSvc),
		sessionView: stviews.NewSessionView(stocktakeSvc),
		boardView:   ordviews.NewBoardView(ordersSvc),

		loginUser: components.NewInput("Пользователь").SetRequired(true).SetWidth(24),
		loginPass: components.NewInput("Пароль").SetRequired(true).SetWidth(24).SetMasked(true),

		theme:         NewTheme(cfg.Display.ColorScheme),
		keys:          DefaultKeyMap(),
		currentModule: ModuleDashboard,
		alerts:        []Alert{},
		now:           time.Now(),
	}
	a.loginUser.Focus(true)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
	)
}

// tickCmd returns a command that sends tick messages.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ==================== async messages ====================

type loggedInMsg struct {
	user *models.User
	err  error
}

type summaryMsg struct {
	summary *reports.WarehouseSummary
	pending int
	err     error
}

type catalogLoadedMsg struct{ err error }
type queueLoadedMsg struct{ err error }
type journalLoadedMsg struct{ err error }
type sessionLoadedMsg struct{ err error }
type boardLoadedMsg struct{ err error }

type usersLoadedMsg struct {
	users []*models.User
	err   error
}

type resourceSavedMsg struct{ err error }
type resourceDeletedMsg struct{ err error }

type requestDecidedMsg struct {
	verb string
	err  error
}

type requestFiledMsg struct{ err error }
type receiptPostedMsg struct {
	number string
	err    error
}

type stocktakeChangedMsg struct {
	action string
	err    error
}

type exportDoneMsg struct {
	path string
	err  error
}

type userSavedMsg struct{ err error }

// ==================== commands ====================

func (a *App) login() tea.Cmd {
	username := strings.TrimSpace(a.loginUser.Value())
	password := a.loginPass.Value()
	return func() tea.Msg {
		user, err := a.authSvc.Login(context.Background(), username, password)
		return loggedInMsg{user: user, err: err}
	}
}

func (a *App) loadSummary() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := a.reportsSvc.Summary(ctx)
		if err != nil {
			return summaryMsg{err: err}
		}
		pending, err := a.allocSvc.PendingRequests(ctx)
		if err != nil {
			return summaryMsg{err: err}
		}
		return summaryMsg{summary: summary, pending: len(pending)}
	}
}

func (a *App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: a.catalogView.Load(context.Background())}
	}
}

func (a *App) loadQueue() tea.Cmd {
	return func() tea.Msg {
		return queueLoadedMsg{err: a.queueView.Load(context.Background())}
	}
}

func (a *App) loadJournal() tea.Cmd {
	return func() tea.Msg {
		return journalLoadedMsg{err: a.journalView.Load(context.Background())}
	}
}

func (a *App) loadSession() tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg{err: a.sessionView.Load(context.Background())}
	}
}

func (a *App) loadBoard() tea.Cmd {
	return func() tea.Msg {
		return boardLoadedMsg{err: a.boardView.Load(context.Background())}
	}
}

func (a *App) loadUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := a.authSvc.ListUsers(context.Background(), a.currentUser)
		return usersLoadedMsg{users: users, err: err}
	}
}

func (a *App) deleteResource(name string) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		err := a.catalogSvc.DeleteResource(context.Background(), actor, name)
		return resourceDeletedMsg{err: err}
	}
}

func (a *App) allocateRequest(requestID string) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.allocSvc.AllocateRequest(context.Background(), actor, requestID)
		return requestDecidedMsg{verb: "выдана", err: err}
	}
}

func (a *App) cancelRequest(requestID, reason string) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.allocSvc.CancelRequest(context.Background(), actor, requestID, reason)
		return requestDecidedMsg{verb: "отклонена", err: err}
	}
}

func (a *App) fileRequest(stageID, resource string, qty int) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.allocSvc.RequestResource(context.Background(), actor, allocation.RequestInput{
			StageID:      stageID,
			ResourceName: resource,
			Quantity:     qty,
		})
		return requestFiledMsg{err: err}
	}
}

func (a *App) postReceipt(input receiving.ReceiptInput) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		receipt, err := a.receivingSvc.CreateReceipt(context.Background(), actor, input)
		if err != nil {
			return receiptPostedMsg{err: err}
		}
		return receiptPostedMsg{number: receipt.Number}
	}
}

func (a *App) startStocktake() tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.stocktakeSvc.StartInventory(context.Background(), actor)
		return stocktakeChangedMsg{action: "начата", err: err}
	}
}

func (a *App) recordCount(inventoryID, resource string, actual int) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.stocktakeSvc.RecordCount(context.Background(), actor, inventoryID, resource, actual)
		return stocktakeChangedMsg{action: "подсчёт записан", err: err}
	}
}

func (a *App) completeStocktake(inventoryID string, updateStock bool) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.stocktakeSvc.CompleteInventory(context.Background(), actor, inventoryID, updateStock)
		action := "завершена без коррекции"
		if updateStock {
			action = "завершена, остатки скорректированы"
		}
		return stocktakeChangedMsg{action: action, err: err}
	}
}

func (a *App) exportWarehouse() tea.Cmd {
	return func() tea.Msg {
		path := reports.ExportFileName("склад")
		err := a.reportsSvc.ExportWarehouse(context.Background(), path)
		return exportDoneMsg{path: path, err: err}
	}
}

func (a *App) exportLastInventory() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		sessions, err := a.stocktakeSvc.ListInventories(ctx)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if len(sessions) == 0 {
			return exportDoneMsg{err: fmt.Errorf("нет инвентаризаций для экспорта")}
		}
		path := reports.ExportFileName("инвентаризация")
		if err := a.reportsSvc.ExportInventory(ctx, sessions[0].ID, path); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func (a *App) registerUser(input auth.RegisterInput) tea.Cmd {
	actor := a.currentUser
	return func() tea.Msg {
		_, err := a.authSvc.Register(context.Background(), actor, input)
		return userSavedMsg{err: err}
	}
}

func (a *App) toggleUserStatus(u *models.User) tea.Cmd {
	actor := a.currentUser
	target := models.UserBlocked
	if u.Status == models.UserBlocked {
		target = models.UserActive
	}
	username := u.Username
	return func() tea.Msg {
		err := a.authSvc.SetStatus(context.Background(), actor, username, target)
		return userSavedMsg{err: err}
	}
}

// ==================== update ====================

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.updateViewDimensions()
		return a, nil

	case tickMsg:
		a.now = time.Time(msg)
		return a, tickCmd()

	case loggedInMsg:
		if msg.err != nil {
			a.loginErr = loginErrorText(msg.err)
			a.loginPass.SetValue("")
			return a, nil
		}
		a.currentUser = msg.user
		a.loginErr = ""
		a.currentModule = ModuleDashboard
		a.AddAlert(AlertInfo, "Вход выполнен: "+msg.user.FullName)
		return a, a.loadSummary()

	case summaryMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Сводка недоступна: "+msg.err.Error())
			return a, nil
		}
		a.summary = msg.summary
		a.pendingCount = msg.pending
		return a, nil

	case catalogLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Склад: "+msg.err.Error())
		}
		return a, nil

	case queueLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Очередь заявок: "+msg.err.Error())
		}
		return a, nil

	case journalLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Журнал прихода: "+msg.err.Error())
		}
		return a, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Инвентаризация: "+msg.err.Error())
		}
		return a, nil

	case boardLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Заказы: "+msg.err.Error())
		}
		return a, nil

	case usersLoadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Пользователи: "+msg.err.Error())
			return a, nil
		}
		a.users = msg.users
		if a.userSel >= len(a.users) {
			a.userSel = 0
		}
		return a, nil

	case resourceSavedMsg:
		a.showForm = false
		a.resourceForm = nil
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Ресурс не сохранён: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Ресурс сохранён")
		}
		return a, tea.Batch(a.loadCatalog(), a.loadSummary())

	case resourceDeletedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Удаление отклонено: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Ресурс удалён")
		}
		return a, tea.Batch(a.loadCatalog(), a.loadSummary())

	case requestDecidedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Заявка не обработана: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Заявка "+msg.verb)
		}
		return a, tea.Batch(a.loadQueue(), a.loadSummary())

	case requestFiledMsg:
		a.showForm = false
		a.requestForm = nil
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Заявка не подана: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Заявка на ресурс подана")
		}
		return a, tea.Batch(a.loadBoard(), a.loadSummary())

	case receiptPostedMsg:
		a.showForm = false
		a.receiptForm = nil
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Приход не оформлен: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Оформлена накладная "+msg.number)
		}
		return a, tea.Batch(a.loadJournal(), a.loadSummary())

	case stocktakeChangedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Инвентаризация: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Инвентаризация: "+msg.action)
		}
		return a, tea.Batch(a.loadSession(), a.loadSummary())

	case exportDoneMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Экспорт не выполнен: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Отчёт сохранён: "+msg.path)
		}
		return a, nil

	case userSavedMsg:
		a.showForm = false
		a.userForm = nil
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Пользователь: "+msg.err.Error())
		} else {
			a.AddAlert(AlertInfo, "Изменения сохранены")
		}
		return a, a.loadUsers()
	}

	return a, nil
}

func loginErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case err == auth.ErrInvalidCredentials:
		return "Неверное имя пользователя или пароль"
	case err == models.ErrPermissionDenied:
		return "Учётная запись заблокирована"
	default:
		return err.Error()
	}
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Login screen swallows everything until a user is authenticated.
	if a.currentUser == nil {
		return a.handleLoginKeys(msg)
	}

	// Confirm modal takes priority
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			c := a.confirm
			a.confirm = nil
			if c.quit {
				a.quitting = true
				return a, tea.Quit
			}
			return a, c.cmd
		case "n", "N", "esc":
			a.confirm = nil
			return a, nil
		}
		return a, nil
	}

	// Form mode needs all input before global keys
	if a.showForm {
		return a.handleFormKeys(msg)
	}

	// Prompt mode (count entry, cancel reason)
	if a.prompt != promptNone {
		return a.handlePromptKeys(msg)
	}

	// Search mode
	if a.currentModule == ModuleWarehouse && a.searchMode {
		return a.handleSearchKeys(msg)
	}

	// Global key bindings
	if a.keys.IsQuit(msg) {
		a.confirm = &pendingConfirm{message: "Выйти из программы?", quit: true}
		return a, nil
	}

	// Function key navigation
	if a.keys.IsFunctionKey(msg) {
		return a.switchModule(a.keys.GetFunctionKeyModule(msg))
	}

	// Back navigation
	if a.keys.Back.Matches(msg) {
		if a.showDetail {
			a.showDetail = false
			return a, nil
		}
		if a.currentModule == ModuleHelp && a.previousModule != "" {
			a.currentModule = a.previousModule
			a.previousModule = ""
		}
		return a, nil
	}

	// Module-specific key handling
	switch a.currentModule {
	case ModuleWarehouse:
		return a.handleWarehouseKeys(msg)
	case ModuleRequests:
		return a.handleRequestKeys(msg)
	case ModuleReceipts:
		return a.handleReceiptKeys(msg)
	case ModuleStocktake:
		return a.handleStocktakeKeys(msg)
	case ModuleOrders:
		return a.handleOrderKeys(msg)
	case ModuleReports:
		return a.handleReportKeys(msg)
	case ModuleUsers:
		return a.handleUserKeys(msg)
	}

	return a, nil
}

func (a *App) switchModule(module string) (tea.Model, tea.Cmd) {
	a.showDetail = false
	switch module {
	case "quit":
		a.confirm = &pendingConfirm{message: "Выйти из программы?", quit: true}
	case "help":
		a.previousModule = a.currentModule
		a.currentModule = ModuleHelp
	case "dashboard":
		a.currentModule = ModuleDashboard
		return a, a.loadSummary()
	case "warehouse":
		a.currentModule = ModuleWarehouse
		return a, a.loadCatalog()
	case "requests":
		a.currentModule = ModuleRequests
		return a, a.loadQueue()
	case "receipts":
		a.currentModule = ModuleReceipts
		return a, a.loadJournal()
	case "stocktake":
		a.currentModule = ModuleStocktake
		return a, a.loadSession()
	case "orders":
		a.currentModule = ModuleOrders
		return a, a.loadBoard()
	case "reports":
		a.currentModule = ModuleReports
		return a, a.loadSummary()
	case "users":
		a.currentModule = ModuleUsers
		return a, a.loadUsers()
	}
	return a, nil
}

func (a *App) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	case "tab", "down", "shift+tab", "up":
		a.loginFocus = 1 - a.loginFocus
		a.loginUser.Focus(a.loginFocus == 0)
		a.loginPass.Focus(a.loginFocus == 1)
		return a, nil
	case "enter":
		if a.loginFocus == 0 {
			a.loginFocus = 1
			a.loginUser.Focus(false)
			a.loginPass.Focus(true)
			return a, nil
		}
		if strings.TrimSpace(a.loginUser.Value()) == "" {
			a.loginErr = "Введите имя пользователя"
			return a, nil
		}
		return a, a.login()
	default:
		if a.loginFocus == 0 {
			a.loginUser.HandleKey(msg.String())
		} else {
			a.loginPass.HandleKey(msg.String())
		}
		return a, nil
	}
}

func (a *App) canManageStock() bool {
	return a.currentUser != nil && a.currentUser.Role.ManagesStock()
}

func (a *App) handleWarehouseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showDetail {
		switch msg.String() {
		case "esc":
			a.showDetail = false
		case "e":
			if r := a.catalogView.SelectedResource(); r != nil && a.canManageStock() {
				a.resourceForm = whviews.NewResourceForm(whviews.FormModeEdit, a.config.Workshop.DefaultUnit)
				a.resourceForm.SetResource(r)
				a.showForm = true
				a.showDetail = false
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.catalogView.MoveUp()
	case "down", "j":
		a.catalogView.MoveDown()
	case "pgup":
		a.catalogView.PageUp()
	case "pgdown":
		a.catalogView.PageDown()
	case "enter":
		if a.catalogView.SelectedResource() != nil {
			a.showDetail = true
		}
	case "a":
		if !a.canManageStock() {
			a.AddAlert(AlertWarning, "Недостаточно прав для изменения склада")
			return a, nil
		}
		a.resourceForm = whviews.NewResourceForm(whviews.FormModeAdd, a.config.Workshop.DefaultUnit)
		a.showForm = true
	case "e":
		if r := a.catalogView.SelectedResource(); r != nil {
			if !a.canManageStock() {
				a.AddAlert(AlertWarning, "Недостаточно прав для изменения склада")
				return a, nil
			}
			a.resourceForm = whviews.NewResourceForm(whviews.FormModeEdit, a.config.Workshop.DefaultUnit)
			a.resourceForm.SetResource(r)
			a.showForm = true
		}
	case "x":
		if r := a.catalogView.SelectedResource(); r != nil {
			if !a.canManageStock() {
				a.AddAlert(AlertWarning, "Недостаточно прав для изменения склада")
				return a, nil
			}
			a.confirm = &pendingConfirm{
				message: fmt.Sprintf("Удалить ресурс «%s»?", r.Name),
				cmd:     a.deleteResource(r.Name),
			}
		}
	case "m":
		a.catalogView.ToggleLowOnly()
		return a, a.loadCatalog()
	case "/", "s":
		a.searchMode = true
		a.searchInput = ""
	}

	return a, nil
}

func (a *App) handleRequestKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		a.queueView.MoveUp()
	case "down", "j":
		a.queueView.MoveDown()
	case "r":
		return a, a.loadQueue()
	case "a":
		if p := a.queueView.SelectedRequest(); p != nil {
			if !a.canManageStock() {
				a.AddAlert(AlertWarning, "Выдачу выполняет кладовщик")
				return a, nil
			}
			return a, a.allocateRequest(p.RequestID)
		}
	case "c":
		if a.queueView.SelectedRequest() != nil {
			a.prompt = promptCancelReason
			a.promptInput = ""
		}
	}

	return a, nil
}

func (a *App) handleReceiptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showDetail {
		if msg.String() == "esc" {
			a.showDetail = false
		}
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.journalView.MoveUp()
	case "down", "j":
		a.journalView.MoveDown()
	case "right", "l":
		if a.journalView.NextPage() {
			return a, a.loadJournal()
		}
	case "left", "h":
		if a.journalView.PrevPage() {
			return a, a.loadJournal()
		}
	case "enter":
		if a.journalView.SelectedReceipt() != nil {
			a.showDetail = true
		}
	case "r":
		return a, a.loadJournal()
	case "n":
		if !a.canManageStock() {
			a.AddAlert(AlertWarning, "Приход оформляет кладовщик")
			return a, nil
		}
		a.receiptForm = rcptviews.NewReceiptForm(a.config.Workshop.DefaultUnit)
		a.showForm = true
	}

	return a, nil
}

func (a *App) handleStocktakeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := a.sessionView.Session()

	switch msg.String() {
	case "up", "k":
		a.sessionView.MoveUp()
	case "down", "j":
		a.sessionView.MoveDown()
	case "r":
		return a, a.loadSession()
	case "n":
		if session != nil {
			a.AddAlert(AlertWarning, "Инвентаризация уже идёт: "+session.Number)
			return a, nil
		}
		if !a.canManageStock() {
			a.AddAlert(AlertWarning, "Инвентаризацию проводит кладовщик")
			return a, nil
		}
		return a, a.startStocktake()
	case "enter":
		if session != nil && a.sessionView.SelectedItem() != nil {
			if !a.canManageStock() {
				a.AddAlert(AlertWarning, "Подсчёт вносит кладовщик")
				return a, nil
			}
			a.prompt = promptCount
			a.promptInput = ""
		}
	case "f":
		if session != nil && a.canManageStock() {
			a.confirm = &pendingConfirm{
				message: "Завершить инвентаризацию и скорректировать остатки по подсчёту?",
				cmd:     a.completeStocktake(session.ID, true),
			}
		}
	case "F":
		if session != nil && a.canManageStock() {
			a.confirm = &pendingConfirm{
				message: "Завершить инвентаризацию без коррекции остатков?",
				cmd:     a.completeStocktake(session.ID, false),
			}
		}
	}

	return a, nil
}

func (a *App) handleOrderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showDetail {
		switch msg.String() {
		case "esc":
			a.showDetail = false
		case "n":
			// File a resource request against a stage of this order.
			if app := a.boardView.SelectedApplication(); app != nil && len(app.Stages) > 0 {
				a.requestForm = newRequestForm()
				a.showForm = true
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.boardView.MoveUp()
	case "down", "j":
		a.boardView.MoveDown()
	case "enter":
		if a.boardView.SelectedApplication() != nil {
			a.showDetail = true
		}
	case "r":
		return a, a.loadBoard()
	}

	return a, nil
}

func (a *App) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "w":
		return a, a.exportWarehouse()
	case "i":
		return a, a.exportLastInventory()
	case "r":
		return a, a.loadSummary()
	}
	return a, nil
}

func (a *App) handleUserKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.currentUser.Role != models.RoleAdmin {
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		if a.userSel > 0 {
			a.userSel--
		}
	case "down", "j":
		if a.userSel < len(a.users)-1 {
			a.userSel++
		}
	case "b":
		if a.userSel < len(a.users) {
			return a, a.toggleUserStatus(a.users[a.userSel])
		}
	case "a":
		a.userForm = newUserForm()
		a.showForm = true
	case "r":
		return a, a.loadUsers()
	}

	return a, nil
}

// handleFormKeys routes keys to whichever form is open.
func (a *App) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case a.resourceForm != nil:
		a.resourceForm.HandleKey(key)
		if a.resourceForm.IsCancelled() {
			a.showForm = false
			a.resourceForm = nil
			return a, nil
		}
		if a.resourceForm.IsSubmitted() {
			return a, a.saveResourceForm()
		}

	case a.receiptForm != nil:
		a.receiptForm.HandleKey(key)
		if a.receiptForm.IsCancelled() {
			a.showForm = false
			a.receiptForm = nil
			return a, nil
		}
		if a.receiptForm.IsSubmitted() {
			input, err := a.receiptForm.GetData()
			if err != nil {
				a.receiptForm.SetError(err.Error())
				a.receiptForm.ResetSubmit()
				return a, nil
			}
			return a, a.postReceipt(input)
		}

	case a.requestForm != nil:
		a.requestForm.HandleKey(key)
		if a.requestForm.IsCancelled() {
			a.showForm = false
			a.requestForm = nil
			return a, nil
		}
		if a.requestForm.IsSubmitted() {
			return a, a.submitRequestForm()
		}

	case a.userForm != nil:
		a.userForm.HandleKey(key)
		if a.userForm.IsCancelled() {
			a.showForm = false
			a.userForm = nil
			return a, nil
		}
		if a.userForm.IsSubmitted() {
			return a, a.submitUserForm()
		}

	default:
		a.showForm = false
	}

	return a, nil
}

func (a *App) saveResourceForm() tea.Cmd {
	form := a.resourceForm
	actor := a.currentUser
	return func() tea.Msg {
		ctx := context.Background()
		if form.Mode() == whviews.FormModeEdit {
			name, input, err := form.GetUpdate()
			if err != nil {
				return resourceSavedMsg{err: err}
			}
			_, err = a.catalogSvc.UpdateResource(ctx, actor, name, input)
			return resourceSavedMsg{err: err}
		}
		input, err := form.GetAdd()
		if err != nil {
			return resourceSavedMsg{err: err}
		}
		_, err = a.catalogSvc.AddResource(ctx, actor, input)
		return resourceSavedMsg{err: err}
	}
}

// requestForm field order: stage number, resource name, quantity.
func newRequestForm() *components.Form {
	return components.NewForm("ЗАЯВКА НА РЕСУРС").
		AddField(components.NewInput("Номер этапа").SetRequired(true).SetWidth(6).SetValue("1")).
		AddField(components.NewInput("Ресурс").SetRequired(true).SetWidth(30)).
		AddField(components.NewInput("Количество").SetRequired(true).SetWidth(8))
}

func (a *App) submitRequestForm() tea.Cmd {
	app := a.boardView.SelectedApplication()
	values := a.requestForm.Values()
	if app == nil || len(values) != 3 {
		a.showForm = false
		a.requestForm = nil
		return nil
	}

	pos, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil || pos < 1 || pos > len(app.Stages) {
		a.requestForm.SetError(fmt.Sprintf("Номер этапа должен быть от 1 до %d", len(app.Stages)))
		a.requestForm.ResetSubmit()
		return nil
	}
	qty, err := strconv.Atoi(strings.TrimSpace(values[2]))
	if err != nil {
		a.requestForm.SetError("Количество должно быть числом")
		a.requestForm.ResetSubmit()
		return nil
	}

	return a.fileRequest(app.Stages[pos-1].ID, strings.TrimSpace(values[1]), qty)
}

// userForm field order: username, password, full name, role.
func newUserForm() *components.Form {
	roles := []string{
		string(models.RoleCustomer),
		string(models.RoleManager),
		string(models.RoleExecutor),
		string(models.RoleStoreman),
		string(models.RoleAdmin),
	}
	return components.NewForm("НОВЫЙ ПОЛЬЗОВАТЕЛЬ").
		AddField(components.NewInput("Логин").SetRequired(true).SetWidth(20)).
		AddField(components.NewInput("Пароль").SetRequired(true).SetWidth(20).SetMasked(true)).
		AddField(components.NewInput("ФИО").SetRequired(true).SetWidth(30)).
		AddField(components.NewSelect("Роль", roles))
}

func (a *App) submitUserForm() tea.Cmd {
	values := a.userForm.Values()
	if len(values) != 4 {
		a.showForm = false
		a.userForm = nil
		return nil
	}

	input := auth.RegisterInput{
		Username: strings.TrimSpace(values[0]),
		Password: values[1],
		FullName: strings.TrimSpace(values[2]),
		Role:     models.Role(values[3]),
	}
	return a.registerUser(input)
}

func (a *App) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		a.prompt = promptNone
		a.promptInput = ""
		return a, nil
	case "enter":
		prompt := a.prompt
		input := strings.TrimSpace(a.promptInput)
		a.prompt = promptNone
		a.promptInput = ""

		switch prompt {
		case promptCount:
			session := a.sessionView.Session()
			item := a.sessionView.SelectedItem()
			if session == nil || item == nil {
				return a, nil
			}
			actual, err := strconv.Atoi(input)
			if err != nil || actual < 0 {
				a.AddAlert(AlertWarning, "Подсчёт должен быть неотрицательным числом")
				return a, nil
			}
			return a, a.recordCount(session.ID, item.ResourceName, actual)
		case promptCancelReason:
			if p := a.queueView.SelectedRequest(); p != nil {
				return a, a.cancelRequest(p.RequestID, input)
			}
		}
		return a, nil
	case "backspace":
		if len(a.promptInput) > 0 {
			runes := []rune(a.promptInput)
			a.promptInput = string(runes[:len(runes)-1])
		}
	default:
		if len([]rune(key)) == 1 {
			a.promptInput += key
		}
	}

	return a, nil
}

func (a *App) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		a.searchMode = false
		a.searchInput = ""
		a.catalogView.SetSearch("")
		return a, a.loadCatalog()
	case "enter":
		a.searchMode = false
		a.catalogView.SetSearch(a.searchInput)
		return a, a.loadCatalog()
	case "backspace":
		if len(a.searchInput) > 0 {
			runes := []rune(a.searchInput)
			a.searchInput = string(runes[:len(runes)-1])
		}
	default:
		if len([]rune(key)) == 1 {
			a.searchInput += key
		}
	}

	return a, nil
}

// updateViewDimensions propagates terminal geometry into the views.
func (a *App) updateViewDimensions() {
	contentWidth := ContentWidth(a.width, 40, MaxContentWidth)
	rows := ContentHeight(a.height, 10)

	a.catalogView.SetVisibleRows(rows)
	a.queueView.SetVisibleRows(rows)
	a.journalView.SetVisibleRows(rows)
	a.sessionView.SetVisibleRows(rows)
	a.boardView.SetVisibleRows(rows)

	// The catalog has the widest rows; resize its name column to use the
	// available width and drop the advisory columns on narrow terminals.
	catalogSpecs := []ColumnSpec{
		{Weight: 2.0, MinWidth: 16, Priority: 10},
		{Fixed: 20, Priority: 3},
		{Fixed: 8, Priority: 9},
		{Fixed: 6, Priority: 2},
		{Fixed: 6, Priority: 1},
		{Fixed: 12, Priority: 8},
	}
	a.catalogView.SetColumnWidths(CalculateColumnWidths(catalogSpecs, contentWidth, 3))
}

// ==================== view ====================

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Загрузка..."
	}

	if a.quitting {
		return a.theme.Title.Render("Завершение работы...")
	}

	if a.currentUser == nil {
		return a.renderLogin()
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := a.height - 6 // header, alert, footer
	if a.confirm != nil {
		b.WriteString(a.renderConfirmDialog(contentHeight))
	} else {
		b.WriteString(a.renderContent(contentHeight))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderLogin renders the login screen.
func (a *App) renderLogin() string {
	title := a.theme.Title.Render(strings.ToUpper(a.config.Workshop.Name))
	subtitle := a.theme.Subtitle.Render("Система управления ресурсами мастерской")

	var form strings.Builder
	form.WriteString(a.loginUser.Render())
	form.WriteString("\n")
	form.WriteString(a.loginPass.Render())
	form.WriteString("\n\n")
	if a.loginErr != "" {
		form.WriteString(a.theme.Error.Render(a.loginErr))
		form.WriteString("\n\n")
	}
	form.WriteString(a.theme.Muted.Render("Enter — войти, Ctrl+C — выход"))

	box := a.theme.Box.Render(title + "\n" + subtitle + "\n\n" + form.String())

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(box)
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("%s — УЧЁТ РЕСУРСОВ v%s", strings.ToUpper(a.config.Workshop.Name), Version)

	userInfo := ""
	if a.currentUser != nil {
		userInfo = fmt.Sprintf("%s (%s)", a.currentUser.FullName, roleLabel(a.currentUser.Role))
	}

	spacing := a.width - lipgloss.Width(title) - lipgloss.Width(userInfo) - 2
	if spacing < 1 {
		spacing = 1
	}

	header := a.theme.Header.Render(title) +
		strings.Repeat(" ", spacing) +
		a.theme.Header.Render(userInfo)

	separator := a.theme.DrawDoubleLine(a.width)

	return header + "\n" + separator
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleCustomer:
		return "заказчик"
	case models.RoleManager:
		return "менеджер"
	case models.RoleExecutor:
		return "исполнитель"
	case models.RoleStoreman:
		return "кладовщик"
	case models.RoleAdmin:
		return "администратор"
	default:
		return string(r)
	}
}

// renderAlertBar renders the current time and the latest alert.
func (a *App) renderAlertBar() string {
	timeStr := a.now.Format(a.config.Display.DateFormat + " " + a.config.Display.TimeFormat)

	var alertText string
	if len(a.alerts) > 0 {
		alert := a.alerts[0]
		switch alert.Level {
		case AlertCritical:
			alertText = a.theme.AlertCrit.Render("ВНИМАНИЕ: " + alert.Message)
		case AlertWarning:
			alertText = a.theme.AlertWarn.Render(alert.Message)
		default:
			alertText = a.theme.Alert.Render(alert.Message)
		}
	} else if a.summary != nil && len(a.summary.LowStock) > 0 {
		alertText = a.theme.AlertWarn.Render(fmt.Sprintf("Позиции на минимальном остатке: %d", len(a.summary.LowStock)))
	} else {
		alertText = a.theme.Muted.Render("Готово к работе")
	}

	timeDisplay := a.theme.Value.Render(timeStr)
	divider := a.theme.StatusDivider.Render()

	return timeDisplay + divider + alertText
}

// renderContent renders the main content area based on current module.
func (a *App) renderContent(height int) string {
	content := a.getModuleContent()

	contentWidth := a.width
	if contentWidth > MaxContentWidth {
		contentWidth = MaxContentWidth
	}

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	contentStyle := lipgloss.NewStyle().
		Width(contentWidth)

	return style.Render(contentStyle.Render(content))
}

// getModuleContent returns the content for the current module.
func (a *App) getModuleContent() string {
	switch a.currentModule {
	case ModuleDashboard:
		return a.renderDashboard()
	case ModuleWarehouse:
		return a.renderWarehouse()
	case ModuleRequests:
		return a.renderRequests()
	case ModuleReceipts:
		return a.renderReceipts()
	case ModuleStocktake:
		return a.renderStocktake()
	case ModuleOrders:
		return a.renderOrders()
	case ModuleReports:
		return a.renderReports()
	case ModuleUsers:
		return a.renderUsers()
	case ModuleHelp:
		return a.renderHelp()
	default:
		return ""
	}
}

func (a *App) renderWarehouse() string {
	if a.showForm && a.resourceForm != nil {
		return a.resourceForm.Render()
	}

	if a.showDetail {
		return a.catalogView.RenderDetail(a.catalogView.SelectedResource())
	}

	var searchBar string
	if a.searchMode {
		searchBar = a.theme.Label.Render("ПОИСК: ") +
			a.theme.Accent.Render(a.searchInput) +
			a.theme.Accent.Render("_") + "\n\n"
	}

	return searchBar + a.catalogView.Render(a.width, a.height-6)
}

func (a *App) renderRequests() string {
	content := a.queueView.Render(a.width, a.height-6)
	if a.prompt == promptCancelReason {
		content += "\n" + a.theme.Label.Render("Причина отказа: ") +
			a.theme.Accent.Render(a.promptInput) +
			a.theme.Accent.Render("_")
	}
	return content
}

func (a *App) renderReceipts() string {
	if a.showForm && a.receiptForm != nil {
		return a.receiptForm.Render()
	}
	if a.showDetail {
		return a.journalView.RenderDetail(a.journalView.SelectedReceipt())
	}
	return a.journalView.Render(a.width, a.height-6)
}

func (a *App) renderStocktake() string {
	content := a.sessionView.Render(a.width, a.height-6)
	if a.prompt == promptCount {
		item := a.sessionView.SelectedItem()
		label := "Фактическое количество"
		if item != nil {
			label = fmt.Sprintf("Фактическое количество «%s»", item.ResourceName)
		}
		content += "\n" + a.theme.Label.Render(label+": ") +
			a.theme.Accent.Render(a.promptInput) +
			a.theme.Accent.Render("_")
	}
	return content
}

func (a *App) renderOrders() string {
	if a.showForm && a.requestForm != nil {
		return a.requestForm.Render()
	}
	if a.showDetail {
		detail := a.boardView.RenderDetail(a.boardView.SelectedApplication())
		return detail + "\n" + a.theme.Label.Render("[n]заявка на ресурс")
	}
	return a.boardView.Render(a.width, a.height-6)
}

// renderDashboard renders the summary screen.
func (a *App) renderDashboard() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ СОСТОЯНИЕ МАСТЕРСКОЙ ═══"))
	b.WriteString("\n\n")

	if a.summary == nil {
		b.WriteString(a.theme.Muted.Render("Сводка загружается..."))
		return b.String()
	}

	s := a.summary

	b.WriteString(a.theme.Subtitle.Render("СКЛАД"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Позиций в номенклатуре: %d\n", s.TotalResources))
	b.WriteString(fmt.Sprintf("  Единиц на складе:       %d\n", s.TotalQuantity))
	if len(s.LowStock) > 0 {
		b.WriteString("  Минимальные остатки:    " + a.theme.Warning.Render(fmt.Sprintf("%d", len(s.LowStock))) + "\n")
		for i, r := range s.LowStock {
			if i >= 5 {
				b.WriteString(a.theme.Muted.Render(fmt.Sprintf("    ... и ещё %d", len(s.LowStock)-5)))
				b.WriteString("\n")
				break
			}
			b.WriteString(a.theme.Warning.Render(fmt.Sprintf("    %s — %d %s (мин. %d)", r.Name, r.Quantity, r.Unit, r.MinQuantity)))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  Минимальные остатки:    " + a.theme.Success.Render("нет") + "\n")
	}
	b.WriteString("\n")

	if len(s.ByType) > 0 {
		b.WriteString(a.theme.Subtitle.Render("ПО ТИПАМ"))
		b.WriteString("\n")
		for _, def := range models.AllResourceTypes() {
			if count, ok := s.ByType[def.Type]; ok && count > 0 {
				b.WriteString(fmt.Sprintf("  %-24s %d\n", def.Name, count))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(a.theme.Subtitle.Render("ЗАЯВКИ"))
	b.WriteString("\n")
	if a.pendingCount > 0 {
		b.WriteString("  В очереди на выдачу: " + a.theme.Warning.Render(fmt.Sprintf("%d", a.pendingCount)) + "\n")
	} else {
		b.WriteString("  В очереди на выдачу: " + a.theme.Success.Render("0") + "\n")
	}

	return b.String()
}

func (a *App) renderReports() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ ОТЧЁТЫ ═══"))
	b.WriteString("\n\n")

	if a.summary != nil {
		b.WriteString(a.theme.Subtitle.Render("СВОДКА"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Позиций: %d, единиц: %d, на минимуме: %d\n",
			a.summary.TotalResources, a.summary.TotalQuantity, len(a.summary.LowStock)))
		b.WriteString("\n")
	}

	b.WriteString(a.theme.Subtitle.Render("ЭКСПОРТ В EXCEL"))
	b.WriteString("\n")
	b.WriteString("  [w]  Остатки склада\n")
	b.WriteString("  [i]  Последняя инвентаризация\n")
	b.WriteString("\n")
	b.WriteString(a.theme.Muted.Render("Файлы сохраняются в текущий каталог."))

	return b.String()
}

func (a *App) renderUsers() string {
	if a.showForm && a.userForm != nil {
		return a.userForm.Render()
	}

	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ ПОЛЬЗОВАТЕЛИ ═══"))
	b.WriteString("\n\n")

	if a.currentUser.Role != models.RoleAdmin {
		b.WriteString(a.theme.Muted.Render("Раздел доступен только администратору."))
		return b.String()
	}

	if len(a.users) == 0 {
		b.WriteString(a.theme.Muted.Render("Список пуст."))
		return b.String()
	}

	for i, u := range a.users {
		status := ""
		if u.Status == models.UserBlocked {
			status = a.theme.Error.Render("  [заблокирован]")
		}
		line := fmt.Sprintf("%-14s %-24s %s", u.Username, u.FullName, roleLabel(u.Role))
		if i == a.userSel {
			b.WriteString(a.theme.Selected.Render(" " + line + " "))
		} else {
			b.WriteString(a.theme.Primary.Render(" " + line + " "))
		}
		b.WriteString(status)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.theme.Label.Render("[a]новый пользователь  [b]блокировать/разблокировать"))

	return b.String()
}

// renderHelp renders the help screen.
func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ СПРАВКА ═══"))
	b.WriteString("\n\n")

	b.WriteString(a.theme.Subtitle.Render("РАЗДЕЛЫ"))
	b.WriteString("\n\n")

	navItems := [][2]string{
		{"F1", "Справка"},
		{"F2", "Обзор"},
		{"F3", "Склад — номенклатура и остатки"},
		{"F4", "Заявки — очередь на выдачу"},
		{"F5", "Приход — накладные"},
		{"F6", "Инвентаризация"},
		{"F7", "Заказы и этапы работ"},
		{"F8", "Отчёты и экспорт"},
		{"F9", "Пользователи"},
		{"F10", "Выход"},
	}

	for _, item := range navItems {
		line := fmt.Sprintf("    %-8s  %s", item[0], item[1])
		b.WriteString(a.theme.Primary.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.theme.Subtitle.Render("УПРАВЛЕНИЕ"))
	b.WriteString("\n\n")

	ctrlItems := [][2]string{
		{"Up/Down", "Перемещение по списку"},
		{"Enter", "Открыть/подтвердить"},
		{"Esc", "Назад/отмена"},
		{"/", "Поиск по складу"},
		{"Tab", "Следующее поле формы"},
		{"PgUp/Dn", "Постраничная прокрутка"},
	}

	for _, item := range ctrlItems {
		line := fmt.Sprintf("    %-8s  %s", item[0], item[1])
		b.WriteString(a.theme.Primary.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.theme.Muted.Render("Esc — вернуться"))

	return b.String()
}

// renderConfirmDialog renders the modal confirmation dialog.
func (a *App) renderConfirmDialog(height int) string {
	message := "Вы уверены?"
	if a.confirm != nil && a.confirm.message != "" {
		message = a.confirm.message
	}

	dialog := a.theme.Box.Render(
		a.theme.Title.Render("ПОДТВЕРЖДЕНИЕ") + "\n\n" +
			a.theme.Base.Render(message) + "\n\n" +
			a.theme.Label.Render("[Y] да   [N] нет"),
	)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(dialog)
}

// renderFooter renders the bottom status bar.
func (a *App) renderFooter() string {
	separator := a.theme.DrawHorizontalLine(a.width)
	help := a.keys.StatusBarHelp()
	return separator + "\n" + a.theme.Footer.Render(help)
}

// AddAlert adds a new alert to the display.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    time.Now(),
	}}, a.alerts...)

	// Keep only last 10 alerts
	if len(a.alerts) > 10 {
		a.alerts = a.alerts[:10]
	}
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = []Alert{}
}

// Run starts the TUI application.
func Run(ctx context.Context, db *database.DB, cfg *config.Config, logger *slog.Logger) error {
	app := New(db, cfg, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
