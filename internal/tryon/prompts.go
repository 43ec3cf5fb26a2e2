package tryon

import "fmt"

func buildGarmentPrompt(description string) string {
	return fmt.Sprintf("Generate a high-quality, professional studio photo of a single piece of clothing: %s. Pure white background, high resolution, fashion catalog style. The clothing should be displayed clearly.", description)
}

const compositePrompt = `SYSTEM MISSION: PHOTOREALISTIC IDENTITY-PRESERVED CLOTHING SWAP.

- IMAGE 1 (SOURCE PERSON): This is the ONLY reference for the human. You MUST maintain 100% identical facial features, bone structure, eyes, hair, skin details, and EXACT body physique/proportions. DO NOT alter, beautify, or change the person in any way.
- IMAGE 2 (TARGET CLOTHING): This is the ONLY reference for the outfit.

EXECUTION STEPS:
1. Extract the person from Image 1 exactly as they are.
2. "Dress" this exact person in the clothing shown in Image 2.
3. Ensure the clothing fits the person's specific body shape from Image 1 naturally.
4. Keep the same pose and height as Image 1 if possible.

CRITICAL CONSTRAINT:
The output person MUST be the EXACT SAME person as in Image 1. If the face looks even slightly different, the task has failed. High-fidelity identity preservation is the top priority.

ENVIRONMENT:
Clean professional studio background, consistent with a high-end fashion shoot.`
