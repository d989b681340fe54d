// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/wneessen/otherside/internal/config"
	"github.com/wneessen/otherside/internal/geocode"
	geocodeearth "github.com/wneessen/otherside/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/otherside/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/otherside/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/otherside/internal/http"
	"github.com/wneessen/otherside/internal/poi"
)

func selectGeocodeProvider(conf *config.Config, client *http.Client, lang language.Tag) (geocode.Geocoder, error) {
	switch conf.GeoCoder.Provider {
	case config.ProviderNominatim:
		return nominatim.New(client, lang, conf.GeoCoder.RequestsPerSec), nil
	case config.ProviderOpenCage:
		coder, err := opencage.New(client, lang, conf.GeoCoder.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenCage geocoder: %w", err)
		}
		return coder, nil
	case config.ProviderGeocodeEarth:
		coder, err := geocodeearth.New(client, lang, conf.GeoCoder.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create geocode.earth geocoder: %w", err)
		}
		return coder, nil
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}
}

// selectDatasetStrategies returns the configured dataset sources in the order file, url, s3.
// The embedded dataset is always appended as the last resort.
func selectDatasetStrategies(conf *config.Config, client *http.Client) ([]poi.Strategy, error) {
	var strategies []poi.Strategy

	if conf.Dataset.File != "" {
		strategies = append(strategies, poi.File{Path: conf.Dataset.File})
	}
	if conf.Dataset.URL != "" {
		strategies = append(strategies, poi.NewRemote(client, conf.Dataset.URL))
	}
	if conf.Dataset.S3.Bucket != "" {
		bucket, err := poi.NewBucket(poi.BucketConfig{
			Endpoint:  conf.Dataset.S3.Endpoint,
			AccessKey: conf.Dataset.S3.AccessKey,
			SecretKey: conf.Dataset.S3.SecretKey,
			Region:    conf.Dataset.S3.Region,
			UseSSL:    conf.Dataset.S3.UseSSL,
			Bucket:    conf.Dataset.S3.Bucket,
			Object:    conf.Dataset.S3.Object,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 dataset strategy: %w", err)
		}
		strategies = append(strategies, bucket)
	}

	return append(strategies, poi.Embedded{}), nil
}
