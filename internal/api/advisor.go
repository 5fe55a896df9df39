// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"github.com/alvinbaena/pwd-advisor/internal/metrics"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/alvinbaena/pwd-advisor/pkg/corpus"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type advisorApi struct {
	svc *advisor.Service
}

func (a *advisorApi) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count == 0 {
		req.Count = advisor.MinCount
	}

	policy := charset.Policy{
		Length:           req.Length,
		Upper:            req.Upper,
		Lower:            req.Lower,
		Digits:           req.Digits,
		Specials:         req.Specials,
		ExcludeAmbiguous: req.ExcludeAmbiguous,
		Exclude:          req.Exclude,
	}

	generated := a.svc.Generate(policy, req.Count, req.Base64)
	resp := generateResponse{Passwords: make([]generatedPassword, 0, len(generated))}
	for _, g := range generated {
		resp.Passwords = append(resp.Passwords, toGenerated(g))
	}
	metrics.GeneratedPasswords.Add(float64(len(generated)))

	c.JSON(http.StatusOK, resp)
}

func (a *advisorApi) checkPassword(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checked := a.svc.Check(req.Password)
	metrics.CheckedPasswords.WithLabelValues(checked.Verdict.Level.String()).Inc()

	c.JSON(http.StatusOK, toQueryResponse(checked))
}

func (a *advisorApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	leaked, err := a.svc.CheckHash(req.Hash)
	switch {
	case errors.Is(err, corpus.ErrInvalidHash):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, corpus.ErrHashUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Error().Err(err).Msg("error querying hash")
		metrics.HashLookups.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if leaked {
		metrics.HashLookups.WithLabelValues("leaked").Inc()
	} else {
		metrics.HashLookups.WithLabelValues("clean").Inc()
	}
	c.JSON(http.StatusOK, hashResponse{Leaked: leaked})
}

// RegisterAdvisorApi mounts POST /generate, /check/password and /check/hash
// on group.
func RegisterAdvisorApi(group *gin.RouterGroup, svc *advisor.Service) {
	a := &advisorApi{svc: svc}

	group.POST("/generate", a.generate)

	check := group.Group("/check")
	check.POST("/password", a.checkPassword)
	check.POST("/hash", a.checkHash)
}
