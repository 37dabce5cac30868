// Dev/test client for dev/test/troubleshooting.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/apex/log"
)

const contentType = "application/json"

var (
	serviceURL = flag.String("url", "http://127.0.0.1:5000", "relay base URL")
	imagePath  = flag.String("image", "", "path to an image file, sent as a PNG Data-URL")
	prompt     = flag.String("prompt", "What kind of waste is this and which bin does it go in?", "prompt sent with the image")
	rawBase64  = flag.Bool("raw", false, "send bare base64 instead of a Data-URL")
)

func doHealth() {
	log.Info("doHealth()")
	resp, err := http.Get(*serviceURL + "/health")
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	log.Infof("Done, %s: %v", resp.Status, string(body))
}

func doAnalyze() {
	log.Info("doAnalyze()")
	img, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Errorf("Failed to read %s: %v", *imagePath, err)
		return
	}

	imageData := base64.StdEncoding.EncodeToString(img)
	if !*rawBase64 {
		imageData = "data:image/png;base64," + imageData
	}
	buf, err := json.Marshal(map[string]string{
		"imageData": imageData,
		"prompt":    *prompt,
	})
	if err != nil {
		log.Errorf("Failed to encode request: %v", err)
		return
	}

	client := &http.Client{Timeout: time.Minute}
	start := time.Now()
	resp, err := client.Post(*serviceURL+"/analyze-image", contentType, bytes.NewReader(buf))
	if err != nil {
		log.Errorf("Failed to call the server with %v", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	log.WithField("elapsed", time.Since(start).String()).Infof("Done, %s: %v", resp.Status, string(body))
}

func main() {
	flag.Parse()
	doHealth()
	if *imagePath == "" {
		log.Warn("No -image given, skipping analyze call")
		return
	}
	doAnalyze()
}
