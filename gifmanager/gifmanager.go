/*
 * GifManager:
 * Offers functions to retrieve GIF URLs from an online GIF platform, such as Giphy.
 */

package gifmanager

import (
	"errors"

	libgiphy "github.com/sanzaru/go-giphy"
	log "github.com/sirupsen/logrus"
)

var ErrDisabled = errors.New("gif lookup disabled: no api key")

type GiphyClient struct {
	Apiclient *libgiphy.Giphy
}

// Without an API key the client stays disabled and forecasts are sent as text only.
func (g *GiphyClient) Init(apiKey string) {
	if apiKey == "" {
		log.Println("GifManager: no Giphy API key configured, GIFs disabled")
		return
	}
	g.Apiclient = libgiphy.NewGiphy(apiKey)
}

func (g *GiphyClient) Enabled() bool {
	return g.Apiclient != nil
}

func (g *GiphyClient) GetGifURL(keywords string) (string, error) {
	if !g.Enabled() {
		return "", ErrDisabled
	}

	dataRandom, err := g.Apiclient.GetRandom(keywords)
	if err != nil {
		log.Println("GifManager: ", err)
		return "", err
	}

	gifUrl := dataRandom.Data.Images.Original.Mp4
	log.Debugf("GifManager: GIF URL: %+v", gifUrl)

	return gifUrl, nil
}
