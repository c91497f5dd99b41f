package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jrsteele09/imvestor-client/api"
	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/forms"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/internal/utils"
	"github.com/jrsteele09/imvestor-client/session"
	"github.com/rs/zerolog/log"
)

type credentials struct {
	email    *string
	password *string
}

func credentialFlags(fs *flag.FlagSet) credentials {
	return credentials{
		email:    fs.String("email", os.Getenv("IMVESTOR_EMAIL"), "Account email (defaults to IMVESTOR_EMAIL)"),
		password: fs.String("password", os.Getenv("IMVESTOR_PASSWORD"), "Account password (defaults to IMVESTOR_PASSWORD)"),
	}
}

// parseFlags treats -h as success so that asking for help does not exit 1
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *app) signIn(ctx context.Context, c credentials) (session.Session, error) {
	req := dto.LoginRequest{Email: strings.TrimSpace(*c.email), Password: *c.password}
	if err := forms.ValidateLogin(req); err != nil {
		return session.Session{}, err
	}
	return a.service.Login(ctx, req.Email, req.Password)
}

func parseIDs(s string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOptionalDate(s string) (dto.Date, error) {
	if strings.TrimSpace(s) == "" {
		return dto.Date{}, nil
	}
	return dto.ParseDate(strings.TrimSpace(s))
}

func loginCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	creds := credentialFlags(fs)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	sess, err := a.signIn(ctx, creds)
	if err != nil {
		return err
	}

	out := map[string]string{
		"email": sess.Email,
		"role":  string(sess.Role),
	}
	if exp := sess.Token().Expiry; !exp.IsZero() {
		out["accessTokenExpires"] = humanize.Time(exp)
	}
	return a.printJSON(out)
}

func signupEntrepreneurCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup-entrepreneur", flag.ContinueOnError)
	first := fs.String("first-name", "", "First name")
	last := fs.String("last-name", "", "Last name")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password (at least 8 characters)")
	fiscal := fs.String("fiscal-code", "", "Fiscal code")
	mobile := fs.String("mobile", "", "Mobile phone")
	birth := fs.String("birth-date", "", "Date of birth (yyyy-MM-dd)")
	skills := fs.String("skills", "", "Comma separated skill ids (see 'imvestor skills')")
	referral := fs.String("referral", "", "Referral token")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	born, err := parseOptionalDate(*birth)
	if err != nil {
		return forms.FieldErrors{"birthDate": err.Error()}
	}
	skillIDs, err := parseIDs(*skills)
	if err != nil {
		return forms.FieldErrors{"skills": err.Error()}
	}

	w := forms.NewWizard(a.service.RegisterEntrepreneur)
	w.Values = dto.RegisterEntrepreneurRequest{
		FirstName:     *first,
		LastName:      *last,
		Email:         strings.TrimSpace(*email),
		Password:      *password,
		FiscalCode:    *fiscal,
		MobileFone:    *mobile,
		BirthDate:     born,
		Skills:        skillIDs,
		ReferralToken: referral,
	}
	for w.Step() != forms.StepFinished {
		log.Debug().Stringer("step", w.Step()).Msg("Signup step")
		if err := w.Next(ctx); err != nil {
			return err
		}
	}

	return a.printJSON(map[string]string{
		"status": "created",
		"email":  w.Values.Email,
		"next":   "imvestor login -email " + w.Values.Email,
	})
}

func signupInvestorCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup-investor", flag.ContinueOnError)
	req := dto.RegisterInvestorRequest{}
	fs.StringVar(&req.FirstName, "first-name", "", "First name")
	fs.StringVar(&req.LastName, "last-name", "", "Last name")
	fs.StringVar(&req.Email, "email", "", "Email")
	fs.StringVar(&req.Password, "password", "", "Password (at least 8 characters)")
	fs.StringVar(&req.FiscalCode, "fiscal-code", "", "Fiscal code")
	fs.StringVar(&req.MobileFone, "mobile", "", "Mobile phone")
	fs.StringVar(&req.City, "city", "", "City")
	fs.StringVar(&req.Country, "country", "", "Country")
	fs.StringVar(&req.InvestmentMinValue, "min-investment", "", "Minimum investment value")
	fs.StringVar(&req.InvestmentMaxValue, "max-investment", "", "Maximum investment value")
	fs.StringVar(&req.InvestmentNetWorth, "net-worth", "", "Net worth")
	fs.StringVar(&req.InvestmentAnnualIncome, "annual-income", "", "Annual income")
	fs.StringVar(&req.About, "about", "", "About you")
	birth := fs.String("birth-date", "", "Date of birth (yyyy-MM-dd)")
	areas := fs.String("areas", "", "Comma separated area ids (see 'imvestor areas')")
	referral := fs.String("referral", "", "Referral token")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	var err error
	if req.BirthDate, err = parseOptionalDate(*birth); err != nil {
		return forms.FieldErrors{"birthDate": err.Error()}
	}
	if req.Areas, err = parseIDs(*areas); err != nil {
		return forms.FieldErrors{"areas": err.Error()}
	}
	req.Email = strings.TrimSpace(req.Email)
	req.ReferralToken = utils.NonZero(strings.TrimSpace(*referral))

	if err := forms.ValidateInvestorSignup(req); err != nil {
		return err
	}
	if err := a.service.RegisterInvestor(ctx, req); err != nil {
		return err
	}
	return a.printJSON(map[string]string{
		"status": "created",
		"email":  req.Email,
		"next":   "imvestor login -email " + req.Email,
	})
}

func profileCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	creds := credentialFlags(fs)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	if _, err := a.signIn(ctx, creds); err != nil {
		return err
	}
	profile, err := a.service.CurrentProfile(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(profile)
}

// pick keeps the current value when a flag was left empty
func pick(flagValue string, current *string) string {
	if flagValue != "" {
		return flagValue
	}
	return utils.Value(current)
}

func updateProfileCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	creds := credentialFlags(fs)
	first := fs.String("first-name", "", "First name")
	last := fs.String("last-name", "", "Last name")
	country := fs.String("country", "", "Country")
	city := fs.String("city", "", "City")
	fiscal := fs.String("fiscal-code", "", "Fiscal code")
	mobile := fs.String("mobile", "", "Mobile phone")
	about := fs.String("about", "", "About you")
	companyRole := fs.String("company-role", "", "Role in the company (entrepreneurs)")
	companyName := fs.String("company-name", "", "Company name (entrepreneurs)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	sess, err := a.signIn(ctx, creds)
	if err != nil {
		return err
	}
	current, err := a.service.GetProfile(ctx, sess.Role)
	if err != nil {
		return err
	}

	switch p := current.(type) {
	case *dto.EntrepreneurProfile:
		req := dto.UpdateEntrepreneurProfileRequest{
			FirstName:   pick(*first, &p.FirstName),
			LastName:    pick(*last, &p.LastName),
			Country:     pick(*country, p.Country),
			City:        pick(*city, p.City),
			CompanyRole: pick(*companyRole, p.CompanyRole),
			CompanyName: pick(*companyName, p.CompanyName),
			FiscalCode:  pick(*fiscal, &p.FiscalCode),
			MobileFone:  pick(*mobile, &p.MobileFone),
			About:       pick(*about, p.About),
		}
		if err := forms.ValidateEntrepreneurProfileUpdate(req); err != nil {
			return err
		}
		updated, err := a.service.UpdateEntrepreneurProfile(ctx, req)
		if err != nil {
			return err
		}
		return a.printJSON(updated)
	case *dto.InvestorProfile:
		req := dto.UpdateInvestorProfileRequest{
			FirstName:  pick(*first, &p.FirstName),
			LastName:   pick(*last, &p.LastName),
			MobileFone: pick(*mobile, &p.MobileFone),
			FiscalCode: pick(*fiscal, &p.FiscalCode),
			Country:    pick(*country, p.Country),
			City:       pick(*city, p.City),
			About:      pick(*about, p.About),
		}
		if err := forms.ValidateInvestorProfileUpdate(req); err != nil {
			return err
		}
		updated, err := a.service.UpdateInvestorProfile(ctx, req)
		if err != nil {
			return err
		}
		return a.printJSON(updated)
	}
	return errors.Wrapf(errors.ErrInvalidRole, "update profile for %s", sess.Role)
}

func uploadBannerCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("upload-banner", flag.ContinueOnError)
	creds := credentialFlags(fs)
	path := fs.String("file", "", "Image to upload")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *path == "" {
		return forms.FieldErrors{"file": "File is required"}
	}

	file, err := api.EncodeFile(*path)
	if err != nil {
		return err
	}
	if _, err := a.signIn(ctx, creds); err != nil {
		return err
	}
	if err := a.service.UploadBanner(ctx, file); err != nil {
		return err
	}
	return a.printJSON(uploadSummary(file))
}

func uploadSummary(file dto.FilePayload) map[string]string {
	size, _ := strconv.ParseUint(file.Size, 10, 64)
	return map[string]string{
		"name": file.Name,
		"type": file.Type,
		"size": humanize.Bytes(size),
	}
}

func skillsCmd(ctx context.Context, a *app, _ []string) error {
	skills, err := a.service.ListSkills(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(skills)
}

func areasCmd(ctx context.Context, a *app, _ []string) error {
	areas, err := a.service.ListAreas(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(areas)
}

func countriesCmd(ctx context.Context, a *app, _ []string) error {
	countries, err := a.service.ListCountries(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(countries)
}

func statesCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("states", flag.ContinueOnError)
	country := fs.Int("country", 0, "Country id (see 'imvestor countries')")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}
	if *country <= 0 {
		return forms.FieldErrors{"country": "Country is required"}
	}

	states, err := a.service.ListStates(ctx, *country)
	if err != nil {
		return err
	}
	return a.printJSON(states)
}

func referralsCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("referrals", flag.ContinueOnError)
	creds := credentialFlags(fs)
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	sess, err := a.signIn(ctx, creds)
	if err != nil {
		return err
	}
	details, err := a.service.GetReferrals(ctx, sess.Email)
	if err != nil {
		return err
	}
	return a.printJSON(details)
}

// faqFlag collects repeated -faq "question|answer" values
type faqFlag []dto.FAQ

func (f *faqFlag) String() string {
	return fmt.Sprintf("%d entries", len(*f))
}

func (f *faqFlag) Set(value string) error {
	question, answer, ok := strings.Cut(value, "|")
	if !ok || strings.TrimSpace(question) == "" {
		return fmt.Errorf("expected \"question|answer\"")
	}
	*f = append(*f, dto.FAQ{Question: strings.TrimSpace(question), Answer: strings.TrimSpace(answer)})
	return nil
}

func createCompanyCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("create-company", flag.ContinueOnError)
	creds := credentialFlags(fs)
	req := dto.ProjectRequest{}
	fs.StringVar(&req.Name, "name", "", "Company name")
	fs.StringVar(&req.QuickSolution, "quick-solution", "", "One line pitch (at least 10 characters)")
	fs.StringVar(&req.CompanySector, "sector", "", "Company sector")
	fs.StringVar(&req.CompanyStage, "stage", "", "Company stage")
	fs.StringVar(&req.Country, "country", "", "Country")
	fs.StringVar(&req.City, "city", "", "City")
	fs.StringVar(&req.About, "about", "", "About the company (10 to 280 characters)")
	fs.StringVar(&req.StartInvestment, "start-investment", "", "Minimum ticket")
	fs.IntVar(&req.InvestorsSlots, "slots", 0, "Number of investor slots")
	fs.StringVar(&req.AnnualRevenue, "annual-revenue", "", "Annual revenue")
	fs.StringVar(&req.InvestmentGoal, "goal", "", "Investment goal")
	website := fs.String("website", "", "Website URL")
	equity := fs.String("equity", "", "Equity offered")
	founded := fs.String("foundation-date", "", "Foundation date (yyyy-MM-dd)")
	banner := fs.String("banner", "", "Banner image")
	attachment := fs.String("file", "", "File to attach after creation")
	var faq faqFlag
	fs.Var(&faq, "faq", "FAQ entry as \"question|answer\" (repeatable)")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	var err error
	if req.FoundationDate, err = parseOptionalDate(*founded); err != nil {
		return forms.FieldErrors{"foundationDate": err.Error()}
	}
	req.Website = utils.NonZero(*website)
	req.Equity = utils.NonZero(*equity)
	req.CompanyFAQ = faq
	if err := forms.ValidateProject(req); err != nil {
		return err
	}

	if *banner != "" {
		file, err := api.EncodeFile(*banner)
		if err != nil {
			return err
		}
		req.Banner = &file
	}

	if _, err := a.signIn(ctx, creds); err != nil {
		return err
	}

	if *attachment == "" {
		project, err := a.service.CreateProject(ctx, req)
		if err != nil {
			return err
		}
		return a.printJSON(project)
	}

	file, err := api.EncodeFile(*attachment)
	if err != nil {
		return err
	}
	project, err := a.service.CreateProjectWithFile(ctx, req, file)
	if err != nil {
		var partial *api.PartialError
		if errors.As(err, &partial) {
			_ = a.printJSON(partial.Project)
		}
		return err
	}
	return a.printJSON(map[string]any{
		"project": project,
		"file":    uploadSummary(file),
	})
}
