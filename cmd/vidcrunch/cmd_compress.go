package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vidcrunch/vidcrunch/pkg/historyview"
	"github.com/vidcrunch/vidcrunch/pkg/uploader"
	"github.com/vidcrunch/vidcrunch/pkg/vidclient"
)

// Progress milestones for the compress flow. Signing is quick, the upload
// dominates, saving the record closes it out.
const (
	progressSigned    = 5
	progressUploadLow = 10
	progressUploadTop = 80
	progressSaving    = 85
	progressDone      = 100
)

var (
	quality    int
	resolution string
)

var compressCmd = &cobra.Command{
	Use:   "compress [video-file]",
	Short: "Compress a video and record the result",
	Long: `Compress uploads a video through the signed direct-upload flow.

The file never passes through the compress API itself: the CLI asks the
API to sign the transformation, streams the bytes straight to the media
service, then saves the outcome to your history.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().IntVar(&quality, "quality", 65, "Target quality, clamped to [1,100]")
	compressCmd.Flags().StringVar(&resolution, "resolution", "original", "Target resolution as WIDTHxHEIGHT, or 'original'")
}

func runCompress(cmd *cobra.Command, args []string) error {
	if authToken == "" {
		return fmt.Errorf("no bearer token: pass --token or set VIDCRUNCH_TOKEN")
	}

	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	filename := filepath.Base(path)

	ctx := cmd.Context()
	api := vidclient.New(apiURL, vidclient.StaticToken(authToken))

	printProgress(filename, 0)
	signed, err := api.SignUpload(ctx, quality, resolution)
	if err != nil {
		fmt.Println()
		return fmt.Errorf("sign upload: %w", err)
	}
	printProgress(filename, progressSigned)

	result, err := uploader.New(signed.CloudName).Upload(ctx, uploader.Request{
		Filename:  filename,
		Body:      file,
		Size:      info.Size(),
		Signature: signed.Signature,
		Timestamp: signed.Timestamp,
		Eager:     signed.Eager,
		APIKey:    signed.APIKey,
		OnProgress: func(uploaded, total int64) {
			span := int64(progressUploadTop - progressUploadLow)
			printProgress(filename, progressUploadLow+int(span*uploaded/total))
		},
	})
	if err != nil {
		fmt.Println()
		return fmt.Errorf("upload: %w", err)
	}
	printProgress(filename, progressSaving)

	url, compressedSize := result.CompressedArtifact()
	record, err := api.SaveRecord(ctx, vidclient.CreateRecord{
		Filename:       filename,
		OriginalSize:   info.Size(),
		CompressedSize: compressedSize,
		CloudinaryURL:  url,
		Resolution:     resolution,
		Quality:        quality,
		PublicID:       &result.PublicID,
	})
	if err != nil {
		fmt.Println()
		return fmt.Errorf("save record: %w", err)
	}
	printProgress(filename, progressDone)
	fmt.Println()

	saving := historyview.SavingsPercent(record.OriginalSize, record.CompressedSize)
	fmt.Printf("Compressed %s: %s -> %s (saved %.1f%%)\n",
		filename, formatBytes(record.OriginalSize), formatBytes(record.CompressedSize), saving)
	fmt.Printf("URL: %s\n", record.CloudinaryURL)
	return nil
}

func printProgress(name string, percent int) {
	fmt.Printf("\r%s  %3d%%", name, percent)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
