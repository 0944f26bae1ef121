package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/typevault/typevault/pkg/hashing"
)

func newUploadCommand() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload font files to the server as one batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return upload(cmd, args, owner)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner to record on the uploaded ingests")
	return cmd
}

func upload(cmd *cobra.Command, paths []string, owner string) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if owner != "" {
		if err := writer.WriteField("owner", owner); err != nil {
			return err
		}
	}

	// Single files ride the "file" part so the client-computed hashes can
	// accompany them; batches use "files" and let the server hash.
	if len(paths) == 1 {
		if err := writeSingle(writer, paths[0]); err != nil {
			return err
		}
	} else {
		for _, path := range paths {
			if err := writeBatchFile(writer, path); err != nil {
				return err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	req, err := http.NewRequestWithContext(
		cmd.Context(), http.MethodPost, serverURL+"/api/ingests", body,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("upload failed: %s: %s", resp.Status, payload)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}

func writeSingle(writer *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := writer.WriteField("quick_hash", hashing.QuickHash(data)); err != nil {
		return err
	}
	if err := writer.WriteField("content_hash", hashing.ContentHash(data)); err != nil {
		return err
	}

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func writeBatchFile(writer *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}
