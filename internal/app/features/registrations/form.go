// internal/app/features/registrations/form.go
package registrations

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/membership"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

// maxFormBytes bounds the in-memory part of a multipart form; larger
// files spill to temporary files up to maxBodyBytes in total.
const (
	maxFormBytes = 10 << 20
	maxBodyBytes = 25 << 20
)

// profileField maps a form field name to the profile string it fills.
var profileField = map[string]func(p *models.Profile) *string{
	"name":                    func(p *models.Profile) *string { return &p.Name },
	"email":                   func(p *models.Profile) *string { return &p.Email },
	"companyName":             func(p *models.Profile) *string { return &p.CompanyName },
	"profession":              func(p *models.Profile) *string { return &p.Profession },
	"nationality":             func(p *models.Profile) *string { return &p.Nationality },
	"membershipType":          func(p *models.Profile) *string { return &p.MembershipType },
	"mobile":                  func(p *models.Profile) *string { return &p.Mobile },
	"designation":             func(p *models.Profile) *string { return &p.Designation },
	"businessActivity":        func(p *models.Profile) *string { return &p.BusinessActivity },
	"sponsorName":             func(p *models.Profile) *string { return &p.SponsorName },
	"passportNumber":          func(p *models.Profile) *string { return &p.PassportNumber },
	"civilId":                 func(p *models.Profile) *string { return &p.CivilID },
	"address":                 func(p *models.Profile) *string { return &p.Address },
	"officePhone":             func(p *models.Profile) *string { return &p.OfficePhone },
	"alternateMobile":         func(p *models.Profile) *string { return &p.AlternateMobile },
	"alternateEmail":          func(p *models.Profile) *string { return &p.AlternateEmail },
	"industrySector":          func(p *models.Profile) *string { return &p.IndustrySector },
	"alternateIndustrySector": func(p *models.Profile) *string { return &p.AlternateIndustrySector },
	"companyAddress":          func(p *models.Profile) *string { return &p.CompanyAddress },
	"companyWebsite":          func(p *models.Profile) *string { return &p.CompanyWebsite },
	"benefit":                 func(p *models.Profile) *string { return &p.BenefitFromOrg },
	"contribution":            func(p *models.Profile) *string { return &p.ContributeToOrg },
	"proposer1":               func(p *models.Profile) *string { return &p.Proposer1 },
	"proposer2":               func(p *models.Profile) *string { return &p.Proposer2 },
}

// fieldFallbacks are alternate names read when the primary field is empty.
var fieldFallbacks = map[string]string{
	"benefit":      "benefitFromOrg",
	"contribution": "contributeToOrg",
}

// jsonApplication is the JSON form of an application. The photo can only
// arrive as a multipart file.
type jsonApplication struct {
	models.Profile
	Benefit      string `json:"benefit"`
	Contribution string `json:"contribution"`
	Photo        string `json:"photo,omitempty"`
	Consent      any    `json:"consent"`
}

// parseApplication reads the application and optional photo from r. The
// returned cleanup releases multipart temp files.
func parseApplication(r *http.Request) (membership.Application, *membership.Upload, func(), error) {
	noop := func() {}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "application/json" {
		var in jsonApplication
		if err := respond.DecodeJSON(r, &in); err != nil {
			return membership.Application{}, nil, noop, err
		}
		if in.Benefit != "" {
			in.Profile.BenefitFromOrg = in.Benefit
		}
		if in.Contribution != "" {
			in.Profile.ContributeToOrg = in.Contribution
		}
		in.Profile.Photo = ""
		return membership.Application{Profile: in.Profile, Consent: truthy(in.Consent)}, nil, noop, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return membership.Application{}, nil, noop, apperr.Validation("Invalid form data")
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	var app membership.Application
	for name, field := range profileField {
		v := r.FormValue(name)
		if alt, ok := fieldFallbacks[name]; ok && v == "" {
			v = r.FormValue(alt)
		}
		*field(&app.Profile) = v
	}
	app.Consent = truthy(r.FormValue("consent"))

	var photo *membership.Upload
	if r.MultipartForm != nil {
		if file, hdr, err := r.FormFile("photo"); err == nil {
			photo = &membership.Upload{
				Filename:    hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
				Body:        file,
			}
			prev := cleanup
			cleanup = func() {
				_ = file.Close()
				prev()
			}
		}
	}
	return app, photo, cleanup, nil
}

// truthy accepts the ways browsers and clients send a checked box.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "on" || s == "yes" {
			return true
		}
		b, _ := strconv.ParseBool(s)
		return b
	case float64:
		return t != 0
	default:
		return false
	}
}
