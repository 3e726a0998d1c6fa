// Package i18n holds the bilingual message table for the USSD menus.
// The state machine never embeds user-facing text; it asks for a key.
package i18n

// Language codes supported by the USSD menus.
const (
	English = "en"
	Swahili = "sw"
)

// translations is the key x language table, loaded once at startup.
var translations = map[string]map[string]string{
	"main_menu": {
		English: "Welcome to Tumaini\n1. Weekly tracking\n2. My goals\n3. Emergency contacts\n4. Language\n0. Exit",
		Swahili: "Karibu Tumaini\n1. Ufuatiliaji wa wiki\n2. Malengo yangu\n3. Wasiliani wa dharura\n4. Lugha\n0. Toka",
	},
	"invalid_input": {
		English: "Invalid input, try again.",
		Swahili: "Jibu si sahihi, jaribu tena.",
	},
	"back_hint": {
		English: "00. Back",
		Swahili: "00. Rudi",
	},
	"goodbye": {
		English: "Thank you for using Tumaini. Goodbye.",
		Swahili: "Asante kwa kutumia Tumaini. Kwaheri.",
	},
	"not_registered": {
		English: "This number is not registered with Tumaini. Please contact support.",
		Swahili: "Nambari hii haijasajiliwa na Tumaini. Tafadhali wasiliana na usaidizi.",
	},
	"role_not_supported": {
		English: "This service is available to beneficiaries only.",
		Swahili: "Huduma hii inapatikana kwa wanufaika pekee.",
	},
	"system_error": {
		English: "Something went wrong. Please try again later.",
		Swahili: "Hitilafu imetokea. Tafadhali jaribu tena baadaye.",
	},
	"could_not_save": {
		English: "Could not save. Please try again.",
		Swahili: "Imeshindikana kuhifadhi. Tafadhali jaribu tena.",
	},
	"session_expired": {
		English: "Your session expired.\n1. Start again\n2. Exit",
		Swahili: "Kipindi chako kimeisha.\n1. Anza tena\n2. Toka",
	},

	// Weekly tracking flow
	"tracking_income": {
		English: "Enter income this week (KES):",
		Swahili: "Weka mapato ya wiki hii (KES):",
	},
	"tracking_expenses": {
		English: "Enter expenses this week (KES):",
		Swahili: "Weka matumizi ya wiki hii (KES):",
	},
	"tracking_capital": {
		English: "Enter current business capital (KES):",
		Swahili: "Weka mtaji wa sasa wa biashara (KES):",
	},
	"tracking_attendance": {
		English: "Group meeting attendance:\n1. Present\n2. Absent\n3. Excused",
		Swahili: "Mahudhurio ya kikao:\n1. Nilihudhuria\n2. Sikuhudhuria\n3. Ruhusa",
	},
	"tracking_confirm_header": {
		English: "Confirm weekly tracking:",
		Swahili: "Thibitisha ufuatiliaji wa wiki:",
	},
	"confirm_options": {
		English: "1. Submit\n2. Edit\n3. Cancel",
		Swahili: "1. Wasilisha\n2. Rekebisha\n3. Ghairi",
	},
	"tracking_saved": {
		English: "Weekly tracking saved.",
		Swahili: "Ufuatiliaji wa wiki umehifadhiwa.",
	},
	"tracking_cancelled": {
		English: "Tracking cancelled.",
		Swahili: "Ufuatiliaji umeghairiwa.",
	},

	// Goals flow
	"goals_menu": {
		English: "My goals\n1. View goals\n2. Create goal",
		Swahili: "Malengo yangu\n1. Tazama malengo\n2. Unda lengo",
	},
	"no_goals": {
		English: "You have no goals yet.\n2. Create goal",
		Swahili: "Bado huna malengo.\n2. Unda lengo",
	},
	"goals_list_header": {
		English: "Your goals (select for details):",
		Swahili: "Malengo yako (chagua kwa maelezo):",
	},
	"create_goal_type": {
		English: "Goal type:\n1. Business\n2. Education\n3. Savings\n4. Other",
		Swahili: "Aina ya lengo:\n1. Biashara\n2. Elimu\n3. Akiba\n4. Nyingine",
	},
	"create_goal_desc": {
		English: "Describe your goal:",
		Swahili: "Eleza lengo lako:",
	},
	"create_goal_amount": {
		English: "Target amount (KES):",
		Swahili: "Kiasi cha lengo (KES):",
	},
	"create_goal_date": {
		English: "Target date (YYYY-MM-DD):",
		Swahili: "Tarehe ya lengo (YYYY-MM-DD):",
	},
	"goal_confirm_header": {
		English: "Confirm new goal:",
		Swahili: "Thibitisha lengo jipya:",
	},
	"goal_saved": {
		English: "Goal saved.",
		Swahili: "Lengo limehifadhiwa.",
	},
	"goal_cancelled": {
		English: "Goal cancelled.",
		Swahili: "Lengo limeghairiwa.",
	},

	// Emergency contacts flow
	"contacts_menu": {
		English: "Emergency contacts\n1. View contacts\n2. Add contact\n3. Set primary contact",
		Swahili: "Wasiliani wa dharura\n1. Tazama wasiliani\n2. Ongeza msiliani\n3. Weka msiliani mkuu",
	},
	"no_contacts": {
		English: "You have no contacts yet.\n1. Add contact",
		Swahili: "Bado huna wasiliani.\n1. Ongeza msiliani",
	},
	"contacts_list_header": {
		English: "Your contacts:",
		Swahili: "Wasiliani wako:",
	},
	"add_contact_name": {
		English: "Contact name:",
		Swahili: "Jina la msiliani:",
	},
	"add_contact_phone": {
		English: "Contact phone (07XXXXXXXX):",
		Swahili: "Simu ya msiliani (07XXXXXXXX):",
	},
	"add_contact_relationship": {
		English: "Relationship:\n1. Parent\n2. Spouse\n3. Sibling\n4. Friend\n5. Other",
		Swahili: "Uhusiano:\n1. Mzazi\n2. Mwenzi\n3. Ndugu\n4. Rafiki\n5. Mwingine",
	},
	"add_contact_address": {
		English: "Contact address:",
		Swahili: "Anwani ya msiliani:",
	},
	"add_contact_primary": {
		English: "Set as primary contact?\n1. Yes\n2. No",
		Swahili: "Weka kama msiliani mkuu?\n1. Ndiyo\n2. Hapana",
	},
	"contact_confirm_header": {
		English: "Confirm new contact:",
		Swahili: "Thibitisha msiliani mpya:",
	},
	"contact_saved": {
		English: "Contact saved.",
		Swahili: "Msiliani amehifadhiwa.",
	},
	"contact_cancelled": {
		English: "Contact cancelled.",
		Swahili: "Msiliani ameghairiwa.",
	},
	"select_primary_header": {
		English: "Select primary contact:",
		Swahili: "Chagua msiliani mkuu:",
	},
	"primary_set": {
		English: "Primary contact updated.",
		Swahili: "Msiliani mkuu amesasishwa.",
	},

	// Language flow
	"language_select": {
		English: "Choose language:\n1. English\n2. Kiswahili",
		Swahili: "Chagua lugha:\n1. English\n2. Kiswahili",
	},
	"language_updated": {
		English: "Language updated.",
		Swahili: "Lugha imesasishwa.",
	},

	// Field labels for confirm summaries and detail screens
	"label_income":       {English: "Income", Swahili: "Mapato"},
	"label_expenses":     {English: "Expenses", Swahili: "Matumizi"},
	"label_capital":      {English: "Capital", Swahili: "Mtaji"},
	"label_attendance":   {English: "Attendance", Swahili: "Mahudhurio"},
	"label_type":         {English: "Type", Swahili: "Aina"},
	"label_description":  {English: "Description", Swahili: "Maelezo"},
	"label_amount":       {English: "Amount", Swahili: "Kiasi"},
	"label_date":         {English: "Date", Swahili: "Tarehe"},
	"label_status":       {English: "Status", Swahili: "Hali"},
	"label_name":         {English: "Name", Swahili: "Jina"},
	"label_phone":        {English: "Phone", Swahili: "Simu"},
	"label_relationship": {English: "Relationship", Swahili: "Uhusiano"},
	"label_address":      {English: "Address", Swahili: "Anwani"},
	"label_primary":      {English: "Primary", Swahili: "Mkuu"},
	"yes":                {English: "Yes", Swahili: "Ndiyo"},
	"no":                 {English: "No", Swahili: "Hapana"},

	"attendance_present": {English: "Present", Swahili: "Nilihudhuria"},
	"attendance_absent":  {English: "Absent", Swahili: "Sikuhudhuria"},
	"attendance_excused": {English: "Excused", Swahili: "Ruhusa"},

	"goal_type_business":  {English: "Business", Swahili: "Biashara"},
	"goal_type_education": {English: "Education", Swahili: "Elimu"},
	"goal_type_savings":   {English: "Savings", Swahili: "Akiba"},
	"goal_type_other":     {English: "Other", Swahili: "Nyingine"},

	"relationship_parent":  {English: "Parent", Swahili: "Mzazi"},
	"relationship_spouse":  {English: "Spouse", Swahili: "Mwenzi"},
	"relationship_sibling": {English: "Sibling", Swahili: "Ndugu"},
	"relationship_friend":  {English: "Friend", Swahili: "Rafiki"},
	"relationship_other":   {English: "Other", Swahili: "Mwingine"},
}

// T returns the localized text for a key, falling back to English and
// finally to the raw key so a missing entry never blanks a screen.
func T(key, language string) string {
	entry, ok := translations[key]
	if !ok {
		return key
	}
	if text, ok := entry[language]; ok {
		return text
	}
	if text, ok := entry[English]; ok {
		return text
	}
	return key
}

// Bilingual renders a key in both languages, for terminal messages shown
// before the caller's language preference is known.
func Bilingual(key string) string {
	return T(key, English) + "\n" + T(key, Swahili)
}
