// Package protocol implements a minimal HTTP/1.1 client protocol on top of
// a transport. It owns the partial-I/O loops the transport contract defers
// to its caller.
package protocol

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	httperrors "github.com/warrenjitsing/LinkedInArticles-sub001/errors"
	"github.com/warrenjitsing/LinkedInArticles-sub001/transport"
)

var (
	headerSeparator  = []byte("\r\n\r\n")
	contentLengthKey = []byte("content-length:")
)

// Http1Protocol implements HTTP/1.1 request/response exchange over a
// Transport. Not safe for concurrent use; the internal buffer is reused
// across requests.
type Http1Protocol struct {
	transport     transport.Transport
	buffer        []byte
	headerSize    int
	contentLength int
}

// NewHttp1Protocol creates a new HTTP/1.1 protocol handler
func NewHttp1Protocol(t transport.Transport) *Http1Protocol {
	return &Http1Protocol{
		transport:     t,
		buffer:        make([]byte, 0, 1024),
		headerSize:    0,
		contentLength: -1,
	}
}

// Connect establishes a connection to the specified host and port
func (p *Http1Protocol) Connect(host string, port uint16) error {
	return p.transport.Connect(host, port)
}

// Disconnect closes the connection
func (p *Http1Protocol) Disconnect() error {
	return p.transport.Close()
}

// buildRequest formats an HTTP request into the internal buffer
func (p *Http1Protocol) buildRequest(req *HttpRequest) {
	p.buffer = p.buffer[:0]

	method := "GET"
	if req.Method == MethodPost {
		method = "POST"
	}
	p.buffer = append(p.buffer, fmt.Sprintf("%s %s HTTP/1.1\r\n", method, req.Path)...)

	for _, header := range req.Headers {
		p.buffer = append(p.buffer, fmt.Sprintf("%s: %s\r\n", header.Key, header.Value)...)
	}

	p.buffer = append(p.buffer, "\r\n"...)

	if req.Method == MethodPost && len(req.Body) > 0 {
		p.buffer = append(p.buffer, req.Body...)
	}
}

// writeAll loops over single-attempt transport writes until the whole
// buffer has been accepted.
func (p *Http1Protocol) writeAll(buf []byte) error {
	sent := 0
	for sent < len(buf) {
		n, err := p.transport.Write(buf[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return nil
}

// readFullResponse reads the complete HTTP response into the buffer
func (p *Http1Protocol) readFullResponse() error {
	p.buffer = p.buffer[:0]
	p.headerSize = 0
	p.contentLength = -1

	readBuf := make([]byte, 1024)

	for {
		n, err := p.transport.Read(readBuf)
		if err != nil {
			if stderrors.Is(err, httperrors.ConnectionClosed) {
				// Orderly shutdown delimits the body unless Content-Length
				// promised more than we got.
				if p.contentLength >= 0 && len(p.buffer) < p.headerSize+p.contentLength {
					return httperrors.NewHttpError(httperrors.IncompleteResponse, err)
				}
				break
			}
			return err
		}

		p.buffer = append(p.buffer, readBuf[:n]...)

		if p.headerSize == 0 {
			if pos := bytes.Index(p.buffer, headerSeparator); pos >= 0 {
				p.headerSize = pos + len(headerSeparator)
				p.contentLength = p.parseContentLength(p.buffer[:p.headerSize])
			}
		}

		if p.headerSize > 0 && p.contentLength >= 0 && len(p.buffer) >= p.headerSize+p.contentLength {
			break
		}
	}

	if p.headerSize == 0 {
		return httperrors.NewHttpError(httperrors.HttpParseFailure, nil)
	}

	return nil
}

// parseContentLength extracts Content-Length from headers
func (p *Http1Protocol) parseContentLength(headersView []byte) int {
	lines := bytes.Split(headersView, []byte("\n"))
	for _, line := range lines[1:] { // Skip status line
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) == 0 {
			break
		}

		if bytes.HasPrefix(bytes.ToLower(line), contentLengthKey) {
			parts := bytes.SplitN(line, []byte(":"), 2)
			if len(parts) == 2 {
				valueStr := strings.TrimSpace(string(parts[1]))
				if length, err := strconv.Atoi(valueStr); err == nil {
					return length
				}
			}
		}
	}
	return -1
}

// parseResponse parses the response buffer into an UnsafeHttpResponse
func (p *Http1Protocol) parseResponse() (*UnsafeHttpResponse, error) {
	if p.headerSize == 0 {
		return nil, httperrors.NewHttpError(httperrors.HttpParseFailure, nil)
	}

	headersBlock := p.buffer[:p.headerSize-len(headerSeparator)]

	parts := bytes.SplitN(headersBlock, []byte("\n"), 2)
	statusLine := bytes.TrimSuffix(parts[0], []byte("\r"))

	// "HTTP/1.1 200 OK"
	statusParts := bytes.SplitN(statusLine, []byte(" "), 3)
	if len(statusParts) < 2 {
		return nil, httperrors.NewHttpError(httperrors.HttpParseFailure, nil)
	}

	statusCode, err := strconv.Atoi(string(statusParts[1]))
	if err != nil {
		return nil, httperrors.NewHttpError(httperrors.HttpParseFailure, err)
	}

	statusMessage := ""
	if len(statusParts) >= 3 {
		statusMessage = string(statusParts[2])
	}

	var headers []HttpHeader
	if len(parts) > 1 {
		headerLines := bytes.Split(parts[1], []byte("\n"))
		for _, line := range headerLines {
			line = bytes.TrimSuffix(line, []byte("\r"))
			if len(line) == 0 {
				break
			}

			headerParts := bytes.SplitN(line, []byte(":"), 2)
			if len(headerParts) == 2 {
				headers = append(headers, HttpHeader{
					Key:   string(headerParts[0]),
					Value: strings.TrimSpace(string(headerParts[1])),
				})
			}
		}
	}

	var body []byte
	if p.contentLength >= 0 {
		body = p.buffer[p.headerSize : p.headerSize+p.contentLength]
	} else {
		body = p.buffer[p.headerSize:]
	}

	return &UnsafeHttpResponse{
		StatusCode:    statusCode,
		StatusMessage: statusMessage,
		Headers:       headers,
		Body:          body,
		ContentLength: p.contentLength,
	}, nil
}

// PerformRequestUnsafe performs an HTTP request and returns a zero-copy
// response. The response is only valid until the next request.
func (p *Http1Protocol) PerformRequestUnsafe(req *HttpRequest) (*UnsafeHttpResponse, error) {
	p.buildRequest(req)

	if err := p.writeAll(p.buffer); err != nil {
		return nil, err
	}

	if err := p.readFullResponse(); err != nil {
		return nil, err
	}

	return p.parseResponse()
}

// PerformRequestSafe performs an HTTP request and returns a copied response
func (p *Http1Protocol) PerformRequestSafe(req *HttpRequest) (*HttpResponse, error) {
	unsafeResp, err := p.PerformRequestUnsafe(req)
	if err != nil {
		return nil, err
	}

	headers := make([]HttpHeader, len(unsafeResp.Headers))
	copy(headers, unsafeResp.Headers)

	body := make([]byte, len(unsafeResp.Body))
	copy(body, unsafeResp.Body)

	return &HttpResponse{
		StatusCode:    unsafeResp.StatusCode,
		StatusMessage: unsafeResp.StatusMessage,
		Headers:       headers,
		Body:          body,
		ContentLength: unsafeResp.ContentLength,
	}, nil
}
