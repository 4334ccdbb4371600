// cmd/uploadcsv – jednorazowy upload pliku CSV z produktami do endpointu
// importu. Osobne narzędzie, bez związku z silnikiem synchronizacji.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"
)

type uploadConfig struct {
	EndpointURL string `json:"endpoint_url"`
	APIKey      string `json:"api_key"`
}

type importResult struct {
	Success  *bool             `json:"success"`
	Imported int               `json:"imported"`
	Updated  int               `json:"updated"`
	Skipped  int               `json:"skipped"`
	Errors   []json.RawMessage `json:"errors"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: uploadcsv caminho/para/PRODUTOS.csv")
		fmt.Fprintln(os.Stderr, "\nConfiguração:")
		fmt.Fprintln(os.Stderr, "  endpoint_url i api_key w config.json obok binarki")
		fmt.Fprintln(os.Stderr, "  albo zmienne środowiskowe UPLOAD_ENDPOINT / IMPORT_API_KEY")
		os.Exit(1)
	}
	csvPath := os.Args[1]

	cfg := loadConfig()
	if cfg.EndpointURL == "" {
		fmt.Fprintln(os.Stderr, "Erro: endpoint_url não configurado")
		os.Exit(1)
	}

	raw, err := uploadCSV(csvPath, cfg.EndpointURL, cfg.APIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Write(raw)
	}
	fmt.Println("============================================================")
	fmt.Println("IMPORT RESULT")
	fmt.Println("============================================================")
	fmt.Println(pretty.String())

	var res importResult
	if err := json.Unmarshal(raw, &res); err == nil {
		if res.Success != nil && !*res.Success {
			fmt.Fprintln(os.Stderr, "Import failed")
			os.Exit(1)
		}
		if len(res.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "Import zakończony z %d błędami\n", len(res.Errors))
			os.Exit(1)
		}
		fmt.Printf("Inserted: %d | Updated: %d | Skipped: %d\n", res.Imported, res.Updated, res.Skipped)
	}
}

// loadConfig czyta config.json obok binarki; zmienne środowiskowe mają
// pierwszeństwo.
func loadConfig() uploadConfig {
	var cfg uploadConfig
	exe, err := os.Executable()
	if err == nil {
		data, err := os.ReadFile(filepath.Join(filepath.Dir(exe), "config.json"))
		if err == nil {
			if err := json.Unmarshal(data, &cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Aviso: config.json inválido: %v\n", err)
			}
		}
	}
	if v := os.Getenv("UPLOAD_ENDPOINT"); v != "" {
		cfg.EndpointURL = v
	}
	if v := os.Getenv("IMPORT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	return cfg
}

// uploadCSV wysyła jeden multipart POST z częścią "file" (text/csv).
func uploadCSV(csvPath, endpointURL, apiKey string) ([]byte, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("CSV file not found: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(csvPath)))
	hdr.Set("Content-Type", "text/csv")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, endpointURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if apiKey != "" {
		req.Header.Set("IMPORT_API_KEY", apiKey)
	}

	fmt.Printf("Uploading %s to %s...\n", csvPath, endpointURL)

	// duże pliki: hojny timeout na cały request
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
