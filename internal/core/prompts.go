package core

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// InitialSystemPrompt is the system instruction for turning an idea (text,
// image or both) into a complete structured prompt.
const InitialSystemPrompt = `Tu es un expert de renommée mondiale en rédaction de prompts pour les générateurs d'images IA (Midjourney, DALL-E, etc.). Transforme l'idée de l'utilisateur, fournie sous forme de texte, d'image, ou les deux, en un prompt extrêmement riche, précis et visuellement évocateur, avec un vocabulaire rarement employé.

**SI UNE IMAGE EST FOURNIE :**
- Analyse son contenu visuel (sujet, style, éclairage, composition, ambiance).
- Si du texte est aussi fourni, utilise-le comme instruction pour guider l'interprétation de l'image.
- Ta sortie DOIT se baser sur l'analyse de l'image.

**EXIGENCES :**
1.  **Sortie :** Réponds UNIQUEMENT avec un objet JSON. AUCUN texte en dehors de cet objet.
2.  **Clés :** L'objet contient les clés "sujet", "style", "éclairage", "composition", "détails".
3.  **Valeurs :** Chaque clé pointe vers un objet avec deux clés :
    - "valeur": une chaîne en français, un segment du prompt.
    - "alternatives": un tableau de 4 autres chaînes en français, des suggestions variées et créatives pour ce segment.
4.  **Qualité :**
    - **Vocabulaire :** terminologie visuelle riche et technique (ex: "lumières en clair-obscur", "brume volumétrique", "diffusion sous la surface").
    - **Style photographique :** sois précis quand l'idée s'y prête (ex: "Photographie éditoriale", "Plan cinématographique", "Photographie de produit").
    - **Mockups :** si l'utilisateur demande un mockup (ex: un t-shirt), utilise la formule "Full blank [objet]" dans la valeur du sujet. N'utilise JAMAIS le mot "mockup".
    - **Exhaustivité :** couvre le sujet, le décor, l'angle, la palette de couleurs, l'éclairage et les textures.`

// AlternativesSystemPrompt asks for four alternatives to one field value.
const AlternativesSystemPrompt = `Tu es un assistant créatif expert en vocabulaire visuel pour l'IA générative. À partir de la catégorie et de la valeur fournies, génère 4 alternatives créatives et techniquement précises, avec un vocabulaire riche et évocateur (ex: "lumières en clair-obscur", "brume volumétrique", "style cinématique"). Réponds UNIQUEMENT avec un objet JSON contenant la clé "alternatives", un tableau de 4 chaînes en français. Aucun texte ni formatage supplémentaire.`

// CustomAlternativesSystemPrompt asks for four alternatives steered by a user query.
const CustomAlternativesSystemPrompt = `Tu es un assistant créatif expert en vocabulaire visuel pour l'IA générative. Réponds UNIQUEMENT avec un objet JSON contenant la clé "alternatives", un tableau de 4 chaînes en français. Aucun texte ni formatage supplémentaire.`

// ImproveSystemPrompt rewrites every field while keeping the key set.
const ImproveSystemPrompt = `Tu es un expert en art et en rédaction de prompts. Réécris et enrichis le prompt JSON fourni.
1.  **Structure :** le JSON de sortie a exactement les mêmes clés que le JSON d'entrée.
2.  **Sous-structures :** chaque clé pointe vers un objet avec "valeur" (string) et "alternatives" (tableau de 4 strings).
3.  **Contenu :** remplace chaque "valeur" par une version plus évocatrice et génère 4 nouvelles "alternatives" liées à la nouvelle valeur.
4.  **Format :** réponds UNIQUEMENT avec l'objet JSON complet. Pas de texte avant ou après, pas de markdown ` + "```json" + `.
5.  **Ordre des clés :** conserve impérativement le MÊME ORDRE de clés que le JSON d'entrée.`

// EditSystemPrompt applies a user instruction while keeping the key set.
const EditSystemPrompt = `Tu es un expert en rédaction de prompts. Modifie le prompt JSON fourni en suivant l'instruction de l'utilisateur.
1.  **Modification :** applique l'instruction de manière cohérente à toutes les parties pertinentes du prompt.
2.  **Structure :** le JSON de sortie a exactement les mêmes clés que le JSON d'entrée.
3.  **Contenu :** change les "valeur" concernées et génère 4 nouvelles "alternatives" pour chaque catégorie modifiée.
4.  **Format :** réponds UNIQUEMENT avec l'objet JSON complet. Pas de texte, pas de markdown.
5.  **Ordre des clés :** conserve impérativement le MÊME ORDRE de clés que le JSON d'entrée.`

// TranslateSystemPrompt translates the flattened prompt to English.
const TranslateSystemPrompt = `Tu es un traducteur expert. Traduis le texte donné du français vers l'anglais. Réponds UNIQUEMENT avec la traduction anglaise, rien d'autre.`

// NewFieldSystemPrompt creates one segment for a new category.
const NewFieldSystemPrompt = `Tu es un expert en rédaction de prompts. Crée un segment de prompt pour une nouvelle catégorie.
1.  **Analyse** le prompt existant pour comprendre le contexte global.
2.  **Génère** un contenu pertinent pour la nouvelle catégorie demandée.
3.  **Sortie :** réponds UNIQUEMENT avec un objet JSON. AUCUN texte en dehors de cet objet.
4.  **Format :** l'objet contient deux clés :
    - "valeur": une chaîne en français, le segment du prompt.
    - "alternatives": un tableau de 4 autres chaînes en français, variées et créatives.
5.  **Pas de markdown :** le JSON n'est pas enveloppé dans un bloc ` + "```json" + `.`

// ExpertPersona is the chat system instruction for prompt work. The model
// answers with bare JSON only when it replaces the prompt.
const ExpertPersona = `Tu es un chatbot expert en rédaction de prompts pour les générateurs d'images IA. Ton but est d'aider l'utilisateur à créer ou affiner un prompt.
- **Mockups :** pour les mockups (t-shirts, etc.), utilise la formule "Full blank [objet]" et n'utilise jamais le mot "mockup" dans la sortie JSON.
- **Structure de prompt :** l'application utilise un objet JSON avec des clés (sujet, style, etc.), où chaque clé pointe vers un objet avec "valeur" (string) et "alternatives" (tableau de 4 strings).
- **Modification de prompt :** si l'utilisateur demande une modification qui doit mettre à jour le prompt (ex: "ajoute un champ pour la météo", "rends le style plus vintage", "inspire-toi de cette image"), tu DOIS répondre **UNIQUEMENT** avec l'objet JSON complet et mis à jour. AUCUN texte avant ou après, pas de markdown. Tu peux ajouter, supprimer ou modifier des clés.
- **Réponse standard :** pour toute autre question, réponds normalement en français, de manière concise et utile.`

// GeneralistPersona is the chat system instruction for general questions.
const GeneralistPersona = `Tu es un assistant IA généraliste et serviable. Réponds aux questions de l'utilisateur de manière claire et concise.`

// Persona greetings shown when a conversation starts.
const (
	ExpertGreeting        = "Bonjour ! Je suis votre assistant expert en prompts. Comment puis-je vous aider à créer le prompt parfait aujourd'hui ?"
	ExpertPromptGreeting  = "Je vois que vous travaillez sur un prompt. Vous pouvez me demander de modifier un champ, d'en ajouter un, ou de changer le style à partir d'un texte ou d'une image."
	GeneralistGreeting    = "Bonjour ! Comment puis-je vous aider aujourd'hui ?"
	PromptProposalMessage = "Voici une proposition de prompt :"
)

// DefaultFields are the keys requested by the initial generation.
var DefaultFields = []string{"sujet", "style", "éclairage", "composition", "détails"}

var defaultLabels = map[string]string{
	"sujet":       "Sujet",
	"style":       "Style",
	"éclairage":   "Éclairage",
	"composition": "Composition",
	"détails":     "Détails",
}

// FieldLabel returns the display label for a field key, used as the category
// name in alternatives requests.
func FieldLabel(key string) string {
	label, ok := defaultLabels[key]
	if !ok {
		label = key
	}
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return label
	}
	return string(unicode.ToUpper(r)) + label[size:]
}

// FieldKey turns a user-entered field name into a prompt key: trimmed,
// lower-cased, inner whitespace replaced by underscores.
func FieldKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// BuildInitialPrompt renders the user text for GenerateInitial. The wording
// depends on whether an image accompanies the idea.
func BuildInitialPrompt(userText string, hasImage bool) string {
	idea := strings.TrimSpace(userText)
	if hasImage {
		if idea == "" {
			return "Analyse l'image fournie et génère un prompt structuré détaillé qui capture son essence."
		}
		return fmt.Sprintf("En te basant sur l'image fournie, génère un prompt structuré qui incorpore l'idée suivante : %q.", idea)
	}
	return fmt.Sprintf("Développe cette idée simple en un prompt structuré pour un générateur d'images : %q", idea)
}

// BuildAlternativesPrompt renders the user message for GetAlternatives.
func BuildAlternativesPrompt(category, value string) string {
	return fmt.Sprintf("Catégorie : %q, Valeur actuelle : %q", category, value)
}

// BuildCustomAlternativesPrompt renders the user message for GetCustomAlternatives.
func BuildCustomAlternativesPrompt(category, query string, existing []string) string {
	if existing == nil {
		existing = []string{}
	}
	return fmt.Sprintf(
		"Pour la catégorie de prompt %q, génère 4 nouvelles suggestions alternatives basées sur la requête utilisateur suivante : %q. Utilise un vocabulaire riche et évocateur. Évite de répéter les suggestions existantes suivantes : %s.",
		category, query, ToJSON(existing),
	)
}

// BuildImprovePrompt renders the user message for ImproveFullPrompt.
func BuildImprovePrompt(current *Prompt) string {
	return "Voici un prompt structuré pour un générateur d'images. Améliore-le en le rendant plus créatif, détaillé et poétique, tout en respectant scrupuleusement sa structure JSON d'origine. Prompt actuel : " + ToJSON(current)
}

// BuildEditPrompt renders the user message for EditFullPrompt.
func BuildEditPrompt(current *Prompt, instruction string) string {
	return fmt.Sprintf("Instruction de l'utilisateur : %q. Prompt JSON à modifier : %s", instruction, ToJSON(current))
}

// BuildNewFieldPrompt renders the user message for GenerateNewField.
func BuildNewFieldPrompt(current *Prompt, name string) string {
	return fmt.Sprintf(`Prompt structuré actuel : %s.
L'utilisateur souhaite ajouter une nouvelle catégorie nommée : %q.
Génère une valeur pertinente et 4 alternatives pour cette nouvelle catégorie, en cohérence avec le reste du prompt.`,
		ToJSON(current), name)
}

// BuildChatContext renders the system turn that tells the chat model which
// prompt the user is working on.
func BuildChatContext(current *Prompt) string {
	return "CONTEXTE: L'utilisateur travaille actuellement sur ce prompt JSON : " + ToJSON(current)
}
