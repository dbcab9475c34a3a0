package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mediarelay/internal/ytdlp"
	"mediarelay/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const relayChunkSize = 32 * 1024

// relay copies stream to the response as bytes arrive. The status line is
// held back until the first chunk is read, so a tool that fails before
// producing output is answered with a 500. Once bytes are on the wire a
// failure can only abort the connection.
func relay(c *gin.Context, stream ytdlp.Stream, disposition, mediaURL string) {
	buf := make([]byte, relayChunkSize)

	n, readErr := readSome(stream, buf)
	if n == 0 {
		if !errors.Is(readErr, io.EOF) {
			stream.Close()
		}
		err := stream.Wait()
		if err == nil && !errors.Is(readErr, io.EOF) {
			err = readErr
		}
		if err != nil {
			logger.LogError("yt-dlp failed before producing output", err,
				zap.String("url", mediaURL),
				zap.String("details", ytdlp.Diagnostic(err)))
			c.String(http.StatusInternalServerError, "download failed: %s", ytdlp.Diagnostic(err))
			return
		}
		setAttachmentHeaders(c, disposition)
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
		return
	}

	setAttachmentHeaders(c, disposition)
	c.Status(http.StatusOK)

	var total int64
	for {
		if n > 0 {
			if _, err := c.Writer.Write(buf[:n]); err != nil {
				logger.LogWarn("Client went away mid-stream",
					zap.String("url", mediaURL),
					zap.Int64("bytes_sent", total),
					zap.Error(err))
				stream.Close()
				go func() {
					if err := stream.Wait(); err != nil {
						logger.LogDebug("yt-dlp exited after client disconnect", zap.Error(err))
					}
				}()
				return
			}
			c.Writer.Flush()
			total += int64(n)
		}
		if readErr != nil {
			break
		}
		n, readErr = stream.Read(buf)
	}

	if !errors.Is(readErr, io.EOF) {
		stream.Close()
	}
	err := stream.Wait()
	if err == nil && !errors.Is(readErr, io.EOF) {
		err = readErr
	}
	if err != nil {
		logger.LogError("yt-dlp failed mid-stream", err,
			zap.String("url", mediaURL),
			zap.Int64("bytes_sent", total),
			zap.String("details", ytdlp.Diagnostic(err)))
		// Headers are gone; drop the connection so the client sees a
		// truncated body rather than a clean end.
		panic(http.ErrAbortHandler)
	}

	logger.LogInfo("Stream relayed", zap.String("url", mediaURL), zap.Int64("bytes_sent", total))
}

// readSome reads until at least one byte or an error arrives.
func readSome(r io.Reader, buf []byte) (int, error) {
	for {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func setAttachmentHeaders(c *gin.Context, disposition string) {
	c.Header("Content-Disposition", disposition)
	c.Header("Content-Type", "application/octet-stream")
}

// buildContentDispositionHeader builds a proper Content-Disposition header
// with RFC 5987 encoding for unicode and special characters
func buildContentDispositionHeader(filename string) string {
	needsEncoding := false
	for _, r := range filename {
		if r > 127 || r == '"' || r == '\\' || r == ';' || r == ',' {
			needsEncoding = true
			break
		}
	}

	if strings.ContainsAny(filename, " \t\n\r") {
		needsEncoding = true
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}

	// Format: filename*=UTF-8''<percent-encoded-filename>
	encodedFilename := url.PathEscape(filename)
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encodedFilename)
}
