// interceptors предоставляет набор клиентских интерсепторов для исходящих HTTP-вызовов
// к бэкенду, построенных над http.RoundTripper.
package interceptors

import "net/http"

// Interceptor оборачивает RoundTripper.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain собирает цепочку так, что первый интерсептор — внешний.
// Chain(base, a, b) => a(b(base)).
func Chain(base http.RoundTripper, ics ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	for i := len(ics) - 1; i >= 0; i-- {
		rt = ics[i](rt)
	}

	return rt
}
