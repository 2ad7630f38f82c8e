package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const defaultBaseURL = "http://localhost:3000/api"

// maxContinuations bounds the automated phase loop; a healthy session
// completes in two continuation turns (researching, analyzing).
const maxContinuations = 4

var baseURL = defaultBaseURL

type turnData struct {
	SessionID     string   `json:"session_id"`
	Phase         string   `json:"phase"`
	Response      string   `json:"response"`
	SearchQueries []string `json:"search_queries"`
	Completed     bool     `json:"completed"`
}

type turnEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    turnData `json:"data"`
}

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // No timeout; research turns can take a while
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func sendTurn(sessionID, message string) (*turnData, error) {
	reqBody := map[string]interface{}{
		"message": message,
	}
	if sessionID != "" {
		reqBody["session_id"] = sessionID
	}

	resp, body, err := sendRequest("POST", "/advisor/v1/send-turn", reqBody)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, string(body))
	}

	var envelope turnEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func printTurn(data *turnData) {
	color.Green("Phase: %s (completed: %v)", data.Phase, data.Completed)
	fmt.Printf("Advisor: %s\n", data.Response)
	if len(data.SearchQueries) > 0 {
		fmt.Println("Search queries:")
		for i, q := range data.SearchQueries {
			fmt.Printf("  %d. %s\n", i+1, q)
		}
	}
}

func main() {
	if v := os.Getenv("ADVISOR_BASE_URL"); v != "" {
		baseURL = v
	}

	color.Cyan("🚀 Starting Shopping Advisor Conversation Simulation\n")

	planningTurns := []string{
		"Hi! I'm looking for a new laptop.",
		"My budget is around $1500, ideally a bit less.",
		"Mostly video editing, plus some light gaming. I'd want at least 16GB RAM.",
		"I like Dell and ASUS. That's everything, go ahead!",
	}

	var sessionID string
	var lastTurn *turnData

	// 1. Planning dialogue
	for i, message := range planningTurns {
		color.Yellow("\n[USER] Turn %d: %s", i+1, message)
		data, err := sendTurn(sessionID, message)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		sessionID = data.SessionID
		lastTurn = data
		printTurn(data)

		if data.Phase != "planning" {
			color.Cyan("\nPlanning finished after %d turns", i+1)
			break
		}
	}

	if lastTurn == nil {
		color.Red("No turns were sent")
		os.Exit(1)
	}

	// 2. Drive the automated phases with continuation turns
	for i := 0; i < maxContinuations && !lastTurn.Completed; i++ {
		if lastTurn.Phase == "planning" {
			color.Red("\nSession still planning after the scripted dialogue; stopping")
			os.Exit(1)
		}
		color.Yellow("\n[AUTO] Continue turn (%s phase)", lastTurn.Phase)
		data, err := sendTurn(sessionID, "__continue__")
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		lastTurn = data
		printTurn(data)
	}

	if !lastTurn.Completed {
		color.Red("\nSession did not complete within %d continuation turns", maxContinuations)
		os.Exit(1)
	}

	// 3. Session snapshot
	color.Yellow("\n[GET] Session snapshot")
	resp, body, err := sendRequest("GET", "/advisor/v1/session/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var snapshotResp map[string]interface{}
	json.Unmarshal(body, &snapshotResp)
	prettyPrint(snapshotResp)

	// 4. Final report
	color.Yellow("\n[GET] Session report")
	resp, body, err = sendRequest("GET", "/advisor/v1/session/"+sessionID+"/report", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var reportResp struct {
		Data struct {
			Markdown string `json:"markdown"`
		} `json:"data"`
	}
	json.Unmarshal(body, &reportResp)
	fmt.Println(reportResp.Data.Markdown)

	// 5. Cleanup
	color.Yellow("\n[DELETE] Session")
	resp, _, err = sendRequest("DELETE", "/advisor/v1/session/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Cyan("\n✅ Simulation Complete")
}
