package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"orion-backend/internal/config"
	"orion-backend/internal/domain"
	"orion-backend/internal/session"
)

// Terminal dashboard client. Protected views (dashboard, transactions,
// whoami) sit behind the session guard: while the manager initializes the
// client shows a loading line, without a session it sends the user to the
// login prompt, and with one it renders the view.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadCLIConfig()
	if err != nil {
		log.Fatal(err)
	}

	sessionPath := cfg.SessionFile
	if sessionPath == "" {
		sessionPath, err = session.DefaultSessionPath()
		if err != nil {
			log.Fatal(err)
		}
	}
	store := session.NewFileStore(sessionPath)

	api := newAPIClient(cfg.APIBaseURL)
	var auth session.Authenticator = api
	if cfg.MockLogin {
		auth = session.NewMockAuthenticator()
	}

	manager := session.NewManager(store, auth)
	guard := session.NewGuard("login")

	fmt.Println("Loading session...")
	state := manager.Initialize()
	if state.Status == session.StatusAuthenticated {
		fmt.Printf("Welcome back, %s.\n", state.Session.Name)
	}

	fmt.Println("Commands: login, logout, whoami, dashboard, transactions, quit")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "login":
			runLogin(ctx, reader, manager)
		case "logout":
			if err := manager.Logout(); err != nil {
				fmt.Printf("logout: %v\n", err)
				continue
			}
			api.setToken("")
			fmt.Println("Logged out.")
		case "whoami":
			if sess, ok := requireSession(manager, guard); ok {
				fmt.Printf("%s <%s> (%s)\n", sess.Name, sess.Email, sess.Role)
			}
		case "dashboard":
			if sess, ok := requireSession(manager, guard); ok {
				renderDashboard(ctx, api, sess)
			}
		case "transactions":
			if _, ok := requireSession(manager, guard); ok {
				renderTransactions(ctx, api)
			}
		case "quit", "exit":
			return
		case "":
		default:
			fmt.Println("Unknown command.")
		}
	}
}

// requireSession is the guard check run before every protected view.
func requireSession(manager *session.Manager, guard *session.Guard) (session.Session, bool) {
	state := manager.State()
	switch guard.Decide(state) {
	case session.DecisionLoading:
		fmt.Println("Loading session...")
		return session.Session{}, false
	case session.DecisionRedirect:
		fmt.Printf("Not logged in. Run %q first.\n", guard.LoginTarget)
		return session.Session{}, false
	}
	return state.Session, true
}

func runLogin(ctx context.Context, reader *bufio.Reader, manager *session.Manager) {
	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')

	fmt.Println("Signing in...")
	sess, err := manager.Login(ctx, strings.TrimSpace(email), strings.TrimSpace(password))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			fmt.Println("Invalid credentials.")
		case errors.Is(err, session.ErrServiceUnavailable):
			fmt.Println("Backend unreachable. Try again later.")
		case errors.Is(err, session.ErrLoginInFlight):
			fmt.Println("A login is already in progress.")
		default:
			fmt.Printf("login: %v\n", err)
		}
		return
	}
	fmt.Printf("Signed in as %s (%s).\n", sess.Name, sess.Role)
}

func renderDashboard(ctx context.Context, api *apiClient, sess session.Session) {
	fmt.Printf("== Dashboard for %s ==\n", sess.Name)
	overview, err := api.overview(ctx)
	if err != nil {
		fmt.Printf("(live data unavailable: %v)\n", err)
		return
	}
	fmt.Printf("Income:  %10.2f\n", overview.TotalIncome)
	fmt.Printf("Expense: %10.2f\n", overview.TotalExpense)
	fmt.Printf("Net:     %10.2f\n", overview.NetBalance)
	for _, ct := range overview.SpendingByCategory {
		fmt.Printf("  %-20s %10.2f\n", ct.Category, ct.Total)
	}
}

func renderTransactions(ctx context.Context, api *apiClient) {
	txs, err := api.transactions(ctx)
	if err != nil {
		fmt.Printf("(live data unavailable: %v)\n", err)
		return
	}
	if len(txs) == 0 {
		fmt.Println("No transactions.")
		return
	}
	for _, tx := range txs {
		fmt.Printf("%s  %-8s %10.2f  %-15s %s\n",
			tx.Date.Format("2006-01-02"), tx.Type, tx.Amount, tx.Category, tx.Description)
	}
}

// apiClient talks to the backend. It doubles as the manager's Authenticator:
// a successful login captures the bearer token for later protected calls.
// The token lives only in process memory; the persisted session record never
// contains it.
type apiClient struct {
	baseURL     string
	client      *http.Client
	accessToken string
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *apiClient) setToken(token string) {
	a.accessToken = token
}

func (a *apiClient) Authenticate(ctx context.Context, email, password string) (session.Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return session.Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return session.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return session.Session{}, session.ErrServiceUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return session.Session{}, session.ErrInvalidCredentials
	case resp.StatusCode >= 500:
		return session.Session{}, session.ErrServiceUnavailable
	default:
		return session.Session{}, session.ErrInvalidCredentials
	}

	var payload struct {
		User struct {
			ID          string      `json:"id"`
			Email       string      `json:"email"`
			DisplayName string      `json:"display_name"`
			Role        domain.Role `json:"role"`
		} `json:"user"`
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return session.Session{}, session.ErrServiceUnavailable
	}
	a.setToken(payload.Tokens.AccessToken)

	name := payload.User.DisplayName
	if name == "" {
		name = payload.User.Email
		if at := strings.Index(name, "@"); at >= 0 {
			name = name[:at]
		}
	}
	return session.Session{
		ID:    payload.User.ID,
		Email: payload.User.Email,
		Name:  name,
		Role:  payload.User.Role,
	}, nil
}

func (a *apiClient) overview(ctx context.Context) (domain.AnalyticsOverview, error) {
	var overview domain.AnalyticsOverview
	if err := a.getJSON(ctx, "/analytics/overview", &overview); err != nil {
		return domain.AnalyticsOverview{}, err
	}
	return overview, nil
}

func (a *apiClient) transactions(ctx context.Context) ([]domain.Transaction, error) {
	var payload struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := a.getJSON(ctx, "/transactions", &payload); err != nil {
		return nil, err
	}
	return payload.Transactions, nil
}

func (a *apiClient) getJSON(ctx context.Context, path string, out any) error {
	if a.accessToken == "" {
		return errors.New("no access token, log in again for live data")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
