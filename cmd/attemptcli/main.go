// attemptcli takes a quiz from the terminal: it fetches the quiz, runs the
// attempt session (countdown and all), and posts the answers when the
// attempt ends.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"quiz-platform/internal/client"
	"quiz-platform/internal/session"
)

type terminalNotifier struct{}

func (terminalNotifier) TabSwitchWarning(count, limit int) {
	color.Yellow("Tab switch detected! (%d/%d)", count, limit)
}

func (terminalNotifier) SubmissionFailed(err error) {
	color.Red("Submission failed: %v. Your attempt is closed; contact your instructor.", err)
}

func main() {
	serverURL := flag.String("server", "http://localhost:8100", "quiz platform base URL")
	quizID := flag.String("quiz", "", "quiz id to attempt")
	userID := flag.String("user", "", "user id to attempt as")
	restricted := flag.Bool("restricted", true, "submit through the cooldown-enforced route")
	flag.Parse()

	if *quizID == "" || *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := []client.Option{}
	if *restricted {
		opts = append(opts, client.WithRestricted())
	}
	api := client.NewHTTPClient(*serverURL, *userID, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if status, err := api.CheckAttempt(ctx, *quizID); err == nil && status.Attempted {
		color.Red("%s", status.Message)
		return
	}

	quiz, err := api.FetchQuiz(ctx, *quizID)
	if err != nil {
		log.Fatalf("Failed to load quiz: %v", err)
	}

	stdin := bufio.NewReader(os.Stdin)
	confirm := func() bool {
		fmt.Print("Submit your answers? [y/N] ")
		line, _ := stdin.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}

	sess := session.New(quiz, api,
		session.WithNotifier(terminalNotifier{}),
		session.WithConfirm(confirm),
	)
	go sess.Run(ctx, nil)

	color.Cyan("%s — %d questions, %d minutes", quiz.Title, len(quiz.Questions), session.DefaultDurationSeconds/60)
	for i, q := range quiz.Questions {
		fmt.Printf("\n%d. %s\n", i+1, q.QuestionText)
		for j, opt := range q.Options {
			fmt.Printf("   %d) %s\n", j+1, opt)
		}
	}
	fmt.Println("\nCommands: <question> <option> to answer, time, submit")

	for sess.Status() == session.StatusInProgress {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			break
		}
		fields := strings.Fields(line)
		switch {
		case len(fields) == 1 && fields[0] == "time":
			remaining := sess.Remaining()
			fmt.Printf("Time left: %02d:%02d\n", remaining/60, remaining%60)
		case len(fields) == 1 && fields[0] == "submit":
			if err := sess.Submit(ctx); err != nil {
				continue
			}
		case len(fields) == 2:
			q, qErr := strconv.Atoi(fields[0])
			o, oErr := strconv.Atoi(fields[1])
			if qErr != nil || oErr != nil {
				fmt.Println("Usage: <question> <option>")
				continue
			}
			if err := sess.SelectAnswer(q-1, o-1); err != nil {
				fmt.Printf("Cannot record answer: %v\n", err)
			}
		default:
			fmt.Println("Commands: <question> <option> to answer, time, submit")
		}
	}

	score, resultErr := sess.Result()
	switch sess.Status() {
	case session.StatusSubmitted:
		if resultErr != nil {
			return
		}
		color.Green("Answers submitted successfully! Score: %d/%d", score, len(quiz.Questions))
	case session.StatusTerminated:
		color.Red("Quiz terminated. Your answers have been submitted.")
	}
}
