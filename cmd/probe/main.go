package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"presence-lab/domain"
	"presence-lab/domain/event"
)

type Config struct {
	URL    string `envconfig:"PROBE_URL" default:"ws://localhost:5001/socket"`
	UserID string `envconfig:"PROBE_USER_ID"`
	Token  string `envconfig:"PROBE_TOKEN"`
	// PROBE_COLOURS enables colorized output
	Colours bool `envconfig:"PROBE_COLOURS" default:"true"`
}

func main() {
	typingTo := flag.String("typing", "", "Send a typing/stopTyping pair to this user once connected")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	address, err := socketURL(config)
	if err != nil {
		log.Fatalf("Invalid PROBE_URL: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		log.Fatalf("Unable to connect to %s: %v", address, err)
	}
	defer conn.Close()
	printHeader(config, fmt.Sprintf("Connected to %s as %q", address, config.UserID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var frame event.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				log.Printf("Connection closed: %v", err)
				return
			}
			printFrame(config, frame)
		}
	}()

	if *typingTo != "" {
		if err := sendTyping(conn, domain.UserID(*typingTo)); err != nil {
			log.Printf("Typing relay failed: %v", err)
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

// socketURL appends the identity to the handshake, the token winning over the plain id.
func socketURL(config Config) (string, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	switch {
	case config.Token != "":
		q.Set("token", config.Token)
	case config.UserID != "":
		q.Set("userId", config.UserID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sendTyping(conn *websocket.Conn, receiver domain.UserID) error {
	data, err := json.Marshal(event.TypingRelay{ReceiverID: receiver})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(event.Frame{Event: event.Typing, Data: data}); err != nil {
		return err
	}
	time.Sleep(time.Second)
	return conn.WriteJSON(event.Frame{Event: event.StopTyping, Data: data})
}

func printHeader(config Config, text string) {
	header := fmt.Sprintf("  ====== %s ======", text)
	if config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)
}

func printFrame(config Config, frame event.Frame) {
	name := string(frame.Event)
	if config.Colours {
		name = color.FgCyan.Render(name)
	}
	fmt.Printf("%s %s\n", time.Now().Format("15:04:05"), name)

	if frame.Event != event.GetOnlineUsers {
		fmt.Printf("  %s\n", string(frame.Data))
		return
	}
	var users []domain.UserID
	if err := json.Unmarshal(frame.Data, &users); err != nil {
		fmt.Printf("  unreadable snapshot: %v\n", err)
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Online user"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, u := range users {
		table.Append([]string{fmt.Sprint(i + 1), string(u)})
	}
	table.Render()
}
