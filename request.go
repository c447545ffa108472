package seb

import (
	"context"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Request is the synchronous view of one incoming exchange: the
// translated environment map plus a blocking body reader. Body and form
// access block the calling goroutine while body events are received.
type Request struct {
	Descriptor *Descriptor
	Environ    map[string]string
	Body       *InputStream

	ctx     context.Context
	receive ReceiveFunc
	send    SendFunc

	formLoaded    bool
	form          url.Values
	multipartForm *multipart.Form
	formErr       error
}

// NewRequest builds the synchronous request object for one exchange.
// The context bounds all body receives for the exchange.
func NewRequest(ctx context.Context, desc *Descriptor, receive ReceiveFunc, send SendFunc) *Request {
	return &Request{
		Descriptor: desc,
		Environ:    Environ(desc),
		Body:       NewInputStream(ctx, receive),
		ctx:        ctx,
		receive:    receive,
		send:       send,
	}
}

// Context returns the exchange's context.
func (r *Request) Context() context.Context { return r.ctx }

// Method returns the request method.
func (r *Request) Method() string { return r.Environ[EnvRequestMethod] }

// Path returns the full request path including any mount prefix.
func (r *Request) Path() string { return r.Environ[EnvPathInfo] }

// Query returns the parsed query string arguments.
func (r *Request) Query() (url.Values, error) {
	return url.ParseQuery(r.Environ[EnvQueryString])
}

// Form returns the parsed request body form data. The body is read and
// parsed on first use, which blocks until the body is drained; repeated
// calls return the same result. Bodies that are neither urlencoded nor
// multipart yield an empty form.
func (r *Request) Form() (url.Values, error) {
	r.loadFormData()
	return r.form, r.formErr
}

// MultipartForm returns the parsed multipart form, including file parts,
// or nil if the body was not multipart. Reads the body on first use.
func (r *Request) MultipartForm() (*multipart.Form, error) {
	r.loadFormData()
	return r.multipartForm, r.formErr
}

func (r *Request) loadFormData() {
	if r.formLoaded {
		return
	}
	r.formLoaded = true
	r.form = url.Values{}
	contentType := r.Environ[EnvContentType]
	if contentType == "" {
		return
	}
	mediatype, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		r.formErr = errors.Wrapf(err, "content type %q", contentType)
		return
	}
	switch {
	case mediatype == "application/x-www-form-urlencoded":
		var body []byte
		if body, r.formErr = r.Body.ReadAll(); r.formErr == nil {
			if r.form, err = url.ParseQuery(string(body)); err != nil {
				r.formErr = errors.WithStack(err)
			}
		}
	case strings.HasPrefix(mediatype, "multipart/"):
		boundary, ok := params["boundary"]
		if !ok {
			r.formErr = errors.New("multipart body without boundary")
			return
		}
		mr := multipart.NewReader(r.Body, boundary)
		if r.multipartForm, err = mr.ReadForm(DefaultMultipartMemory); err != nil {
			r.formErr = errors.WithStack(err)
			return
		}
		for name, values := range r.multipartForm.Value {
			r.form[name] = values
		}
	}
}
