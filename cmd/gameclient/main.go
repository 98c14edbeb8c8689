package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/studymate/gameclient/client"
	"github.com/studymate/gameclient/wstest"
)

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)
	var (
		serverURL = fs.StringP("server-url", "s", getEnv("GAME_SERVER_URL", "ws://localhost:8080"), "session server base url")
		sessionID = fs.String("session", getEnv("GAME_SESSION_ID", ""), "session id to join")
		userID    = fs.String("user-id", getEnv("GAME_USER_ID", ""), "player id")
		userName  = fs.String("user-name", getEnv("GAME_USER_NAME", ""), "player display name")
		groupID   = fs.String("group", getEnv("GAME_GROUP_ID", ""), "group id for group-scoped sessions")
		logLevel  = fs.StringP("log-level", "l", getEnv("GAME_LOG_LEVEL", "info"), "log level")
		loopback  = fs.Bool("loopback", false, "run a local scripted session server and connect to it")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	if *loopback {
		addr, stop, lErr := startLoopback(&logger)
		if lErr != nil {
			logger.Fatal().Err(lErr).Msg("failed to start loopback server")
		}
		defer stop()
		*serverURL = "ws://" + addr
	}

	if *sessionID == "" || *userID == "" {
		logger.Fatal().Msg("--session and --user-id are required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cl := client.New(client.Config{
		Logger:    &logger,
		ServerURL: *serverURL,
	})
	if err = cl.Connect(ctx, client.Params{
		SessionID: *sessionID,
		UserID:    *userID,
		UserName:  *userName,
		GroupID:   *groupID,
	}); err != nil {
		logger.Fatal().Err(err).Msg("connect failed")
	}
	defer cl.Cleanup()

	go watchTopics(ctx, cl)
	go readCommands(ctx, cancel, cl, *userID, *userName)

	<-ctx.Done()
	logger.Warn().Msg("shutting down")
}

// watchTopics prints server pushes as they arrive. Each topic is consumed
// independently, exactly like the UI screens would.
func watchTopics(ctx context.Context, cl *client.Client) {
	t := cl.Topics()
	conn, cancelConn := t.Connection.Watch()
	defer cancelConn()
	chat, cancelChat := t.ChatMessage.Watch()
	defer cancelChat()
	question, cancelQ := t.NextQuestion.Watch()
	defer cancelQ()
	starting, cancelS := t.GameStarting.Watch()
	defer cancelS()
	finished, cancelF := t.GameFinished.Watch()
	defer cancelF()
	session, cancelSess := t.Session.Watch()
	defer cancelSess()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-conn:
			fmt.Printf("* connection: %s %s\n", st.Status, st.Reason)
		case m := <-chat:
			fmt.Printf("[%s] %s\n", m.SenderName, m.Message)
		case q := <-question:
			fmt.Printf("* question %d/%d: %s\n", q.QuestionNumber, q.TotalQuestions, q.Question)
			for i, opt := range q.Options {
				fmt.Printf("    %d) %s\n", i, opt)
			}
		case c := <-starting:
			if c != nil {
				fmt.Printf("* game starting in %d\n", *c)
			}
		case s := <-session:
			fmt.Printf("* session %s: %d players, status %s\n", s.SessionID, len(s.Players), s.Status)
		case <-finished:
			fmt.Println("* game finished, final session state:")
			if s, ok := t.Session.Get(); ok {
				spew.Dump(s)
			}
		}
	}
}

func readCommands(ctx context.Context, cancel context.CancelFunc, cl *client.Client, userID, userName string) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "ready":
			cl.ToggleReady(true)
		case "unready":
			cl.ToggleReady(false)
		case "start":
			cl.SignalStart()
		case "answer":
			if len(fields) < 3 {
				fmt.Println("usage: answer <questionID> <index>")
				continue
			}
			idx, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("index must be a number")
				continue
			}
			cl.SubmitAnswer(userID, fields[1], idx, 0)
		case "say":
			cl.SendChat(userID, userName, strings.Join(fields[1:], " "), false)
		case "quit":
			cancel()
			return
		default:
			fmt.Println("commands: ready | unready | start | answer <qid> <idx> | say <msg> | quit")
		}
	}
}

func startLoopback(logger *zerolog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: wstest.NewServer(wstest.Config{Logger: logger}).Handler()}
	go func() {
		_ = srv.Serve(ln)
	}()
	stop := func() { _ = srv.Close() }
	return ln.Addr().String(), stop, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
