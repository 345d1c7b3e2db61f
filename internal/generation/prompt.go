package generation

import (
	"fmt"
	"strings"

	"germanclash/internal/models"
)

// MaxExistingSummaries caps how many stored exercises are listed to avoid repeats
const MaxExistingSummaries = 100

var levelDescriptions = map[string]string{
	"A1": "principiantes absolutos (vocabulario básico, frases simples, presente)",
	"A2": "nivel elemental (vocabulario cotidiano, pasado simple, futuro básico)",
	"B1": "nivel intermedio (conversaciones complejas, subjuntivo, vocabulario amplio)",
	"B2": "nivel intermedio-avanzado (textos complejos, todos los tiempos verbales, expresiones idiomáticas)",
	"C1": "nivel intermedio-avanzado (textos complejos, refranes, frases hechas, expresiones coloquiales)",
	"C2": "nivel avanzado (comprensión total, expresiones nativas, refranes, frases hechas, expresiones coloquiales)",
}

// LevelDescription returns the learner profile sent to the model for a level
func LevelDescription(level int) string {
	return levelDescriptions[models.LevelName(level)]
}

const explanationRule = "   - incorrect_answer_X_explanation: explica en español POR QUÉ la opción es incorrecta SIN REVELAR la respuesta correcta; el alumno tiene una segunda oportunidad.\n"

const translationsRule = "   - word_translations: OBLIGATORIO. Objeto JSON con la traducción al español, según el contexto, de CADA palabra alemana del statement. Clave en minúsculas y sin puntuación.\n"

const noTranslations = "   - word_translations: null\n"

var typeRules = map[models.ExerciseType]string{
	models.TypeFillInTheBlank: "   - statement: frase en ALEMÁN con ___ donde falta la palabra\n" +
		"   - correct_answer: la palabra alemana que falta\n" +
		"   - incorrect_answer_1/2/3: palabras alemanas plausibles pero incorrectas\n" +
		explanationRule + translationsRule,
	models.TypeFillInTheBlankWriting: "   - statement: frase en ALEMÁN con ___ donde falta la palabra\n" +
		"   - correct_answer: la palabra alemana que falta\n" +
		translationsRule,
	models.TypeListening: "   - statement: \"Escucha la palabra y selecciona la traducción correcta\"\n" +
		"   - german_word: una palabra en alemán (con artículo si es sustantivo)\n" +
		"   - correct_answer: su traducción al español\n" +
		"   - spanish_translation: igual que correct_answer\n" +
		"   - incorrect_answer_1/2/3: traducciones al español incorrectas\n" +
		explanationRule + noTranslations,
	models.TypeIdentifyTheWord: "   - SOLO para conceptos con un emoji claro\n" +
		"   - emoji: un único emoji (OBLIGATORIO)\n" +
		"   - statement: \"¿Qué es esto?\"\n" +
		"   - correct_answer: la palabra alemana del emoji (con artículo si es sustantivo)\n" +
		"   - incorrect_answer_1/2/3: otras palabras alemanas que NO corresponden al emoji\n" +
		"   - hint: pista en español (OBLIGATORIO)\n" +
		explanationRule + noTranslations,
	models.TypeWheelOfFortune: "   - statement: frase o palabra alemana a adivinar\n" +
		"   - correct_answer: igual que statement\n" +
		"   - spanish_translation: traducción al español (OBLIGATORIO)\n" +
		"   - hint: pista en español\n" +
		"   - incorrect_answer_*: null\n" +
		noTranslations,
	models.TypeFreeWriting: "   - statement: tarea de redacción detallada en español\n" +
		"   - correct_answer: \"N/A\"\n" +
		"   - hint: orientación adicional en español (opcional)\n" +
		"   - incorrect_answer_*: null\n" +
		noTranslations,
	models.TypeWordSearch: "   - statement: descripción en alemán de la palabra a buscar\n" +
		"   - correct_answer: la palabra alemana a encontrar\n" +
		"   - spanish_translation: traducción al español (OBLIGATORIO)\n" +
		"   - hint: pista en español\n" +
		"   - incorrect_answer_*: null\n" +
		noTranslations,
}

// Distribution splits a mixed batch of count exercises across types. Each of the four
// rare types gets a tenth, fill-in-the-blank and listening share two thirds of the rest,
// and identify-the-word takes whatever remains.
func Distribution(count int) map[models.ExerciseType]int {
	tenth := count / 10
	third := (count - 4*tenth) / 3
	return map[models.ExerciseType]int{
		models.TypeFillInTheBlank:        third,
		models.TypeFillInTheBlankWriting: tenth,
		models.TypeListening:             third,
		models.TypeIdentifyTheWord:       count - 4*tenth - 2*third,
		models.TypeWheelOfFortune:        tenth,
		models.TypeFreeWriting:           tenth,
		models.TypeWordSearch:            tenth,
	}
}

func typeInstructions(req Request) string {
	var b strings.Builder
	if req.Type != "" {
		fmt.Fprintf(&b, "CRÍTICO: crea SOLO ejercicios de tipo %s.\n\nCrea %d ejercicios %s con estas reglas:\n\n%s:\n%s",
			req.Type, req.Count, req.Type, req.Type, typeRules[req.Type])
		fmt.Fprintf(&b, "\nRECUERDA: los %d ejercicios deben tener type \"%s\".", req.Count, req.Type)
		return b.String()
	}

	dist := Distribution(req.Count)
	fmt.Fprintf(&b, "Crea %d ejercicios variados con esta distribución:\n\n", req.Count)
	for i, t := range models.ExerciseTypes {
		fmt.Fprintf(&b, "%d. %s (%d ejercicios):\n%s\n", i+1, t, dist[t], typeRules[t])
	}
	b.WriteString("Mezcla los tipos de ejercicio.")
	return b.String()
}

func summaryLine(s models.ExerciseSummary) string {
	switch s.Type {
	case models.TypeListening:
		if s.GermanWord != "" {
			return fmt.Sprintf("- [%s] Palabra: %q", s.Type, s.GermanWord)
		}
	case models.TypeFillInTheBlank, models.TypeFillInTheBlankWriting:
		return fmt.Sprintf("- [%s] Frase: %q → Respuesta: %q", s.Type, s.Statement, s.CorrectAnswer)
	case models.TypeWheelOfFortune:
		return fmt.Sprintf("- [%s] %q", s.Type, s.CorrectAnswer)
	case models.TypeIdentifyTheWord, models.TypeWordSearch:
		return fmt.Sprintf("- [%s] Palabra: %q", s.Type, s.CorrectAnswer)
	}
	statement := []rune(s.Statement)
	if len(statement) > 50 {
		statement = statement[:50]
	}
	return fmt.Sprintf("- [%s] \"%s...\"", s.Type, string(statement))
}

// BuildPrompt assembles the generation prompt for a batch
func BuildPrompt(req Request, topicDescription string, existing []models.ExerciseSummary) string {
	levelName := models.LevelName(req.Level)

	var b strings.Builder
	fmt.Fprintf(&b, "Eres un experto en crear ejercicios de alemán para hispanohablantes de nivel %s (%s).\n\n",
		levelName, LevelDescription(req.Level))
	fmt.Fprintf(&b, "REQUISITOS DEL NIVEL %s:\n", levelName)
	fmt.Fprintf(&b, "- Vocabulario, gramática y complejidad EXACTAMENTE del nivel %s.\n", levelName)
	b.WriteString("- En los ejercicios de selección solo la respuesta correcta es gramaticalmente correcta.\n")
	b.WriteString("- Enunciados en español en A1 a B2, en alemán en C1 y C2.\n")
	b.WriteString("- Ningún ejercicio puede depender de un contexto externo a la frase.\n\n")

	fmt.Fprintf(&b, "TEMA: %s\nDESCRIPCIÓN DEL TEMA:\n%s\n", req.Topic, topicDescription)
	fmt.Fprintf(&b, "Todos los ejercicios deben practicar los conceptos del tema %q.\n\n", req.Topic)

	b.WriteString(typeInstructions(req))
	b.WriteString("\n\nREGLA GLOBAL: incluye SIEMPRE la propiedad \"word_translations\". ")
	b.WriteString("Es un objeto en FILL_IN_THE_BLANK y FILL_IN_THE_BLANK_WRITING y null en los demás tipos.\n\n")
	b.WriteString("VARIEDAD: cada ejercicio es único, no repitas palabras alemanas ni estructuras, ")
	b.WriteString("y usa ejemplos prácticos en lugar de preguntas sobre la teoría.\n")

	if len(existing) > 0 {
		if len(existing) > MaxExistingSummaries {
			existing = existing[:MaxExistingSummaries]
		}
		b.WriteString("\nEJERCICIOS YA EXISTENTES (NO REPETIR palabras, frases ni estructuras):\n")
		for _, s := range existing {
			b.WriteString(summaryLine(s))
			b.WriteByte('\n')
		}
	}

	b.WriteString("\nDevuelve SOLO un array JSON válido, sin texto adicional.")
	return b.String()
}

// TranslationPrompt asks for a word-by-word translation map of one sentence
func TranslationPrompt(sentence string) string {
	return fmt.Sprintf(`Devuelve SOLO un objeto JSON con traducciones palabra por palabra al español de esta frase en alemán.

Frase (alemán): %q

REGLAS:
- Claves: palabras en alemán EN MINÚSCULAS y SIN puntuación.
- Incluye TODAS las palabras de la frase excepto el hueco "___".
- Valores: traducción al español según el contexto de la frase.
- SOLO JSON, sin texto adicional.`, sentence)
}
