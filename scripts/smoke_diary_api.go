//go:build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

func baseURL() string {
	if v := os.Getenv("DIARY_API_URL"); v != "" {
		return v
	}
	return "http://localhost:3000/api/diary/v1"
}

func prettyPrint(b []byte) {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		fmt.Println(string(b))
		return
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func sendRequest(method, path string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL()+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func must(step string, method, path string, body interface{}) []byte {
	color.Yellow("\n%s", step)
	resp, b, err := sendRequest(method, path, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 300 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(b)
	return b
}

func main() {
	color.Cyan("📔 Magical Diary API smoke test against %s\n", baseURL())

	b := must("1. Create session (memory mode)", "POST", "/sessions", map[string]string{"mode": "memory"})
	var created struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &created); err != nil || created.Data.Id == "" {
		color.Red("No session id in response")
		os.Exit(1)
	}
	id := created.Data.Id

	must("2. Write an entry", "POST", "/sessions/"+id+"/entries", map[string]string{"text": "Hello, who are you?"})
	must("3. Write a follow-up", "POST", "/sessions/"+id+"/entries", map[string]string{"text": "What did I just ask you?"})
	must("4. Illegible handwriting", "POST", "/sessions/"+id+"/entries", map[string]string{"text": "I don't understand what you wrote"})
	must("5. Turns in magical mode", "GET", "/sessions/"+id+"/turns?mode=magical", nil)

	color.Yellow("\n6. Export transcript")
	_, export, err := sendRequest("GET", "/sessions/"+id+"/export", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(export))

	must("7. Reset", "POST", "/sessions/"+id+"/reset", nil)
	must("8. One-shot", "POST", "/oneshot", map[string]string{"text": "Tell me a secret."})
	must("9. Delete session", "DELETE", "/sessions/"+id, nil)

	color.Cyan("\n✅ Done")
}
