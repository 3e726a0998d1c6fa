package services

import (
	"regexp"
	"strconv"

	"github.com/TumainiCare/tumaini-backend/internal/i18n"
	"github.com/TumainiCare/tumaini-backend/internal/models"
)

// Emergency contacts flow, mirroring the goals flow shape: a read path
// with an empty-list escape hatch, a multi-field write path, and a third
// branch for designating the primary contact.

const contactListLimit = 5

// Kenyan mobile numbers: 07XXXXXXXX, 2547XXXXXXXX or +2547XXXXXXXX.
var kenyanMobilePattern = regexp.MustCompile(`^(?:\+?254|0)7\d{8}$`)

func (m *MenuService) contactDraft(session *models.UssdSession) *models.ContactDraft {
	if session.FlowData.Contact == nil {
		session.FlowData.ActiveFlow = models.FlowContactCreate
		session.FlowData.Contact = &models.ContactDraft{}
	}
	return session.FlowData.Contact
}

func (m *MenuService) loadContactPage(session *models.UssdSession, flow models.FlowKind) error {
	contacts, err := m.gateways.Contacts.ListRecent(session.BeneficiaryID, contactListLimit)
	if err != nil {
		return err
	}

	session.FlowData.ClearFlow()
	session.FlowData.ActiveFlow = flow
	for _, c := range contacts {
		session.FlowData.ContactPage = append(session.FlowData.ContactPage, models.ListedContact{
			ContactID: c.ContactID,
			Name:      c.Name,
			Phone:     c.Phone,
			IsPrimary: c.IsPrimary,
		})
	}
	return nil
}

func (m *MenuService) renderContactsMenu(session *models.UssdSession) string {
	return i18n.T("contacts_menu", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleContactsMenu(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		if err := m.loadContactPage(session, models.FlowContactView); err != nil {
			return m.collaboratorFailure(session, "contact listing", err)
		}
		session.MenuState = models.StateViewContacts
		return Con(m.render(session))
	case "2":
		session.FlowData.ClearFlow()
		session.FlowData.ActiveFlow = models.FlowContactCreate
		session.FlowData.Contact = &models.ContactDraft{}
		session.MenuState = models.StateAddContactName
		return Con(m.render(session))
	case "3":
		if err := m.loadContactPage(session, models.FlowContactSelect); err != nil {
			return m.collaboratorFailure(session, "contact listing", err)
		}
		if len(session.FlowData.ContactPage) == 0 {
			session.MenuState = models.StateViewContacts
			return Con(m.render(session))
		}
		session.MenuState = models.StateSelectPrimaryContact
		return Con(m.render(session))
	default:
		return m.invalidRetry(session)
	}
}

func contactLine(index int, c models.ListedContact) string {
	line := strconv.Itoa(index+1) + ". " + c.Name + " (" + c.Phone + ")"
	if c.IsPrimary {
		line += " *"
	}
	return line
}

func (m *MenuService) renderViewContacts(session *models.UssdSession) string {
	lang := session.Language
	page := session.FlowData.ContactPage
	if len(page) == 0 {
		return i18n.T("no_contacts", lang) + "\n" + i18n.T("back_hint", lang)
	}

	out := i18n.T("contacts_list_header", lang)
	for i, c := range page {
		out += "\n" + contactLine(i, c)
	}
	return out + "\n" + i18n.T("back_hint", lang)
}

func (m *MenuService) handleViewContacts(session *models.UssdSession, input string) string {
	if len(session.FlowData.ContactPage) == 0 {
		// Empty-list escape hatch straight into contact creation.
		if input == "1" {
			session.FlowData.ClearFlow()
			session.FlowData.ActiveFlow = models.FlowContactCreate
			session.FlowData.Contact = &models.ContactDraft{}
			session.MenuState = models.StateAddContactName
			return Con(m.render(session))
		}
		return m.invalidRetry(session)
	}

	session.FlowData.ClearFlow()
	session.MenuState = models.StateContactsMenu
	return Con(m.render(session))
}

// Add-contact write path

func (m *MenuService) renderAddContactName(session *models.UssdSession) string {
	return i18n.T("add_contact_name", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleAddContactName(session *models.UssdSession, input string) string {
	if input == "" {
		return m.invalidRetry(session)
	}
	m.contactDraft(session).Name = input
	session.MenuState = models.StateAddContactPhone
	return Con(m.render(session))
}

func (m *MenuService) renderAddContactPhone(session *models.UssdSession) string {
	return i18n.T("add_contact_phone", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleAddContactPhone(session *models.UssdSession, input string) string {
	if !kenyanMobilePattern.MatchString(input) {
		return m.invalidRetry(session)
	}
	m.contactDraft(session).Phone = models.NormalizePhone(input)
	session.MenuState = models.StateAddContactRelationship
	return Con(m.render(session))
}

func (m *MenuService) renderAddContactRelationship(session *models.UssdSession) string {
	return i18n.T("add_contact_relationship", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleAddContactRelationship(session *models.UssdSession, input string) string {
	var key string
	switch input {
	case "1":
		key = "relationship_parent"
	case "2":
		key = "relationship_spouse"
	case "3":
		key = "relationship_sibling"
	case "4":
		key = "relationship_friend"
	case "5":
		key = "relationship_other"
	default:
		return m.invalidRetry(session)
	}
	// Stored in English regardless of display language.
	m.contactDraft(session).Relationship = i18n.T(key, models.LanguageEnglish)
	session.MenuState = models.StateAddContactAddress
	return Con(m.render(session))
}

func (m *MenuService) renderAddContactAddress(session *models.UssdSession) string {
	return i18n.T("add_contact_address", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleAddContactAddress(session *models.UssdSession, input string) string {
	if input == "" {
		return m.invalidRetry(session)
	}
	m.contactDraft(session).Address = input
	session.MenuState = models.StateAddContactPrimary
	return Con(m.render(session))
}

func (m *MenuService) renderAddContactPrimary(session *models.UssdSession) string {
	return i18n.T("add_contact_primary", session.Language) + "\n" + i18n.T("back_hint", session.Language)
}

func (m *MenuService) handleAddContactPrimary(session *models.UssdSession, input string) string {
	var isPrimary bool
	switch input {
	case "1":
		isPrimary = true
	case "2":
		isPrimary = false
	default:
		return m.invalidRetry(session)
	}
	m.contactDraft(session).IsPrimary = &isPrimary
	session.MenuState = models.StateAddContactConfirm
	return Con(m.render(session))
}

func (m *MenuService) renderAddContactConfirm(session *models.UssdSession) string {
	lang := session.Language
	draft := session.FlowData.Contact
	if draft == nil {
		draft = &models.ContactDraft{}
	}

	primary := i18n.T("no", lang)
	if draft.IsPrimary != nil && *draft.IsPrimary {
		primary = i18n.T("yes", lang)
	}

	return i18n.T("contact_confirm_header", lang) + "\n" +
		i18n.T("label_name", lang) + ": " + draft.Name + "\n" +
		i18n.T("label_phone", lang) + ": " + draft.Phone + "\n" +
		i18n.T("label_relationship", lang) + ": " + draft.Relationship + "\n" +
		i18n.T("label_address", lang) + ": " + draft.Address + "\n" +
		i18n.T("label_primary", lang) + ": " + primary + "\n" +
		i18n.T("confirm_options", lang)
}

func (m *MenuService) handleAddContactConfirm(session *models.UssdSession, input string) string {
	switch input {
	case "1":
		draft := session.FlowData.Contact
		if draft == nil || draft.Name == "" || draft.Phone == "" ||
			draft.Relationship == "" || draft.Address == "" || draft.IsPrimary == nil {
			return m.invalidRetry(session)
		}
		if _, err := m.gateways.Contacts.Create(session.BeneficiaryID, draft); err != nil {
			return m.collaboratorFailure(session, "contact create", err)
		}
		session.FlowData.ClearFlow()
		session.MenuState = models.StateContactsMenu
		return Con(i18n.T("contact_saved", session.Language) + "\n\n" + m.render(session))
	case "2":
		session.MenuState = models.StateAddContactName
		return Con(m.render(session))
	case "3":
		session.FlowData.ClearFlow()
		session.MenuState = models.StateContactsMenu
		return Con(i18n.T("contact_cancelled", session.Language) + "\n\n" + m.render(session))
	default:
		return m.invalidRetry(session)
	}
}

// Primary-contact selection branch

func (m *MenuService) renderSelectPrimaryContact(session *models.UssdSession) string {
	lang := session.Language
	out := i18n.T("select_primary_header", lang)
	for i, c := range session.FlowData.ContactPage {
		out += "\n" + contactLine(i, c)
	}
	return out + "\n" + i18n.T("back_hint", lang)
}

func (m *MenuService) handleSelectPrimaryContact(session *models.UssdSession, input string) string {
	page := session.FlowData.ContactPage

	index, err := strconv.Atoi(input)
	if err != nil || index < 1 || index > len(page) {
		return m.invalidRetry(session)
	}

	if err := m.gateways.Contacts.SetPrimary(page[index-1].ContactID); err != nil {
		return m.collaboratorFailure(session, "set primary contact", err)
	}

	session.FlowData.ClearFlow()
	session.MenuState = models.StateContactsMenu
	return Con(i18n.T("primary_set", session.Language) + "\n\n" + m.render(session))
}
