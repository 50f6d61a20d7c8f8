package browser

import (
	"encoding/json"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SaveCookies writes the browser's cookie jar to path so an authenticated
// session survives restarts.
func SaveCookies(b *rod.Browser, path string) error {
	cookies, err := b.GetCookies()
	if err != nil {
		return errors.Wrap(err, "get cookies")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create cookie file")
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(cookies); err != nil {
		return errors.Wrap(err, "encode cookies")
	}
	logrus.Infof("🍪 saved %d cookies to %s", len(cookies), path)
	return nil
}

// LoadCookies restores a previously saved cookie jar into the browser.
// A missing file is not an error; it just means a fresh login is needed.
func LoadCookies(b *rod.Browser, path string) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		logrus.Infof("🍪 no cookie file at %s, starting unauthenticated", path)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "open cookie file")
	}
	defer file.Close()

	var cookies []*proto.NetworkCookie
	if err := json.NewDecoder(file).Decode(&cookies); err != nil {
		return errors.Wrap(err, "decode cookies")
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		})
	}

	if err := b.SetCookies(params); err != nil {
		return errors.Wrap(err, "set cookies")
	}
	logrus.Infof("🍪 restored %d cookies from %s", len(params), path)
	return nil
}
